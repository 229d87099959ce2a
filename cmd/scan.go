package cmd

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/directive"
	"github.com/docsmith/docsmith/internal/introspect"
	"github.com/docsmith/docsmith/internal/organize"
)

var scanCmd = &cobra.Command{
	Use:   "scan [package...]",
	Short: "Report the directives found in package doc comments",
	Example: `  docsmith scan
  docsmith scan ./graph ./store
  docsmith scan -v ./...`,
	Run: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

type scanResult struct {
	pattern string
	pkg     *introspect.Package
	err     error
}

func runScan(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{cfg.Project.Package}
	}

	results, scanErr := collectScans(newLoader(cfg), patterns)

	succeeded := 0
	for _, res := range results {
		if res.err != nil {
			fmt.Printf("%s: %v\n", res.pattern, res.err)
			continue
		}
		succeeded++
		printScanReport(cfg, res.pkg)
	}
	if succeeded == 0 && scanErr != nil {
		log.Fatalf("scan failed: %v", scanErr)
	}
}

// collectScans loads every pattern with bounded parallelism, keeping the
// per-pattern outcome in input order. The returned error is the first load
// failure; partial results are still usable.
func collectScans(loader introspect.Loader, patterns []string) ([]scanResult, error) {
	results := make([]scanResult, len(patterns))

	var g errgroup.Group
	g.SetLimit(4)
	for i, pattern := range patterns {
		g.Go(func() error {
			pkg, err := loader.Load(pattern)
			results[i] = scanResult{pattern: pattern, pkg: pkg, err: err}
			return err
		})
	}
	return results, g.Wait()
}

func printScanReport(cfg *config.Config, pkg *introspect.Package) {
	records := organize.ExtractDirectives(pkg)

	fmt.Printf("%s: %d symbols, %d with directives\n", pkg.Name, len(pkg.Symbols), len(records))

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	unconfigured := make(map[string]bool)
	for _, name := range names {
		rec := records[name]
		var parts []string
		if rec.Family != "" {
			parts = append(parts, "family="+rec.Family)
			if _, ok := cfg.FamilyFor(rec.Family); !ok {
				unconfigured[rec.Family] = true
			}
		}
		if rec.Order != directive.OrderUnset {
			parts = append(parts, fmt.Sprintf("order=%d", rec.Order))
		}
		if len(rec.SeeAlso) > 0 {
			parts = append(parts, "seealso="+strings.Join(rec.SeeAlso, ","))
		}
		if rec.NoDoc {
			parts = append(parts, "nodoc")
		}
		fmt.Printf("  %-30s %s\n", name, strings.Join(parts, " "))
	}

	if verbose {
		for _, sym := range pkg.Symbols {
			if _, ok := records[sym.Name]; !ok {
				fmt.Printf("  %-30s (no directives)\n", sym.Name)
			}
		}
	}

	for _, s := range pkg.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Name, s.Reason)
	}

	if len(unconfigured) > 0 {
		fams := make([]string, 0, len(unconfigured))
		for f := range unconfigured {
			fams = append(fams, f)
		}
		sort.Strings(fams)
		fmt.Printf("  hint: families without configuration (title/order default): %s\n",
			strings.Join(fams, ", "))
		fmt.Printf("  add [families.%s] to docsmith.toml to customize\n",
			config.NormalizeFamilyKey(fams[0]))
	}
}
