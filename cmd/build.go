package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/builder"
	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/directive"
	"github.com/docsmith/docsmith/internal/introspect"
	"github.com/docsmith/docsmith/internal/postrender"
	"github.com/docsmith/docsmith/internal/site"
	"github.com/docsmith/docsmith/internal/state"
	"github.com/docsmith/docsmith/internal/watch"
)

var (
	buildWatch     bool
	buildNoRefresh bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Regenerate sections and render the site",
	Args:  cobra.NoArgs,
	Run:   runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildWatch, "watch", false, "rebuild when source files change")
	buildCmd.Flags().BoolVar(&buildNoRefresh, "no-refresh", false, "render without regenerating sections")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := buildOnce(ctx, cfg); err != nil {
		log.Fatalf("build failed: %v", err)
	}

	if !buildWatch {
		return
	}

	fmt.Println("Watching for changes (ctrl-c to stop)...")
	w := &watch.Watcher{
		Root:   ".",
		Ignore: []string{"_site", ".quarto", "node_modules", filepath.Join(cfg.Project.DocsDir, "reference")},
		OnChange: func() {
			if err := buildOnce(ctx, cfg); err != nil {
				slog.Error("rebuild failed", "reason", err)
			}
		},
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("watch failed: %v", err)
	}
}

// buildOnce runs one full build: section refresh (unless suppressed),
// render, post-render pass, and a state record. Build-state bookkeeping is
// best-effort and never fails the build.
func buildOnce(ctx context.Context, cfg *config.Config) error {
	var pkg *introspect.Package
	sectionCount := -1

	if buildNoRefresh {
		// The cached snapshot still feeds the post-render pass and the
		// build record when sections are not regenerated.
		if snap, err := introspect.LoadSnapshot(config.SnapshotDir(), cfg.Project.Package); err == nil {
			pkg = snap
		} else {
			slog.Debug("no cached snapshot", "package", cfg.Project.Package, "reason", err)
		}
	} else {
		pkg2, sections, err := refresh(cfg)
		if err != nil {
			return err
		}
		pkg, sectionCount = pkg2, len(sections)
	}

	b := builder.New(cfg.Build.Tool, cfg.Project.DocsDir,
		time.Duration(cfg.Build.TimeoutSeconds)*time.Second)
	if err := b.Check(); err != nil {
		return err
	}

	start := time.Now()
	renderErr := b.Render(ctx)
	recordBuild(cfg, pkg, sectionCount, start, renderErr)
	if renderErr != nil {
		return renderErr
	}

	links, err := site.ReadSourceLinks(sourceLinksPath(cfg))
	if err != nil {
		slog.Warn("skipping source links", "reason", err)
	}
	p := &postrender.Processor{Links: links}
	if pkg != nil {
		p.SeeAlso = make(map[string][]string)
		p.Symbols = make(map[string]bool)
		for _, sym := range pkg.Symbols {
			p.Symbols[sym.Name] = true
			if related := directive.Extract(sym.Doc).SeeAlso; len(related) > 0 {
				p.SeeAlso[sym.Name] = related
			}
			for _, m := range sym.Members {
				p.Symbols[sym.Name+"."+m.Name] = true
				if related := directive.Extract(m.Doc).SeeAlso; len(related) > 0 {
					p.SeeAlso[sym.Name+"."+m.Name] = related
				}
			}
		}
	}
	siteDir := filepath.Join(cfg.Project.DocsDir, "_site")
	if _, err := os.Stat(siteDir); err == nil {
		if err := p.Run(siteDir); err != nil {
			return fmt.Errorf("post-render pass: %w", err)
		}
	}

	fmt.Printf("Site rendered in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func recordBuild(cfg *config.Config, pkg *introspect.Package, sectionCount int, start time.Time, renderErr error) {
	db, err := state.Open(config.StatePath())
	if err != nil {
		slog.Warn("cannot open build state", "reason", err)
		return
	}
	defer db.Close()

	name := cfg.Project.Package
	if pkg != nil {
		name = pkg.Name
	}
	row, err := db.UpsertPackage(name)
	if err != nil {
		slog.Warn("cannot record package", "reason", err)
		return
	}

	// A negative section count means the refresh was skipped; the stored
	// scan stays as it was.
	if pkg != nil && sectionCount >= 0 {
		changed, err := db.RecordScan(row.ID, introspect.Fingerprint(pkg), len(pkg.Symbols), sectionCount)
		if err != nil {
			slog.Warn("cannot record scan", "reason", err)
		} else if !changed {
			slog.Info("API surface unchanged since last build", "package", name)
		}
	}

	status := "ok"
	if renderErr != nil {
		status = "failed"
	}
	if err := db.RecordBuild(row.ID, start, time.Since(start), cfg.Build.Tool, status); err != nil {
		slog.Warn("cannot record build", "reason", err)
	}
	if renderErr == nil {
		if err := db.MarkBuilt(row.ID); err != nil {
			slog.Warn("cannot mark build", "reason", err)
		}
	}
}
