package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/directive"
	"github.com/docsmith/docsmith/internal/introspect"
	"github.com/docsmith/docsmith/internal/organize"
	"github.com/docsmith/docsmith/internal/site"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Directive-driven API reference sites for Go packages",
	Long: `docsmith discovers a package's public API, organizes it into reference
sections driven by %family directives in doc comments, and maintains the
Quarto site that renders it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// newLoader picks the discovery backend: a pre-exported manifest when one
// is configured, Go source otherwise.
func newLoader(cfg *config.Config) introspect.Loader {
	if cfg.Discovery.Manifest != "" {
		return &introspect.ManifestLoader{Path: cfg.Discovery.Manifest}
	}
	return &introspect.SourceLoader{}
}

func newOrganizer(cfg *config.Config) *organize.Organizer {
	org := organize.New(cfg.Families)
	if len(cfg.Discovery.Exclude) > 0 {
		org.Exclude = make(map[string]bool, len(cfg.Discovery.Exclude))
		for _, name := range cfg.Discovery.Exclude {
			org.Exclude[name] = true
		}
		for _, name := range cfg.Discovery.Include {
			delete(org.Exclude, name)
		}
	}
	return org
}

func siteOptions(cfg *config.Config, pkgName string) site.Options {
	return site.Options{
		PackageName: pkgName,
		SiteTitle:   cfg.Project.SiteTitle,
		SiteURL:     cfg.Project.SiteURL,
		RepoURL:     cfg.Source.Repo,
	}
}

func quartoConfigPath(cfg *config.Config) string {
	return filepath.Join(cfg.Project.DocsDir, "_quarto.yml")
}

func sourceLinksPath(cfg *config.Config) string {
	return filepath.Join(cfg.Project.DocsDir, "_source_links.json")
}

// refresh loads the package, organizes it, and rewrites every generated
// site artifact: the quartodoc sections, the sidebar, llms.txt, the
// source-link map and the snapshot cache.
func refresh(cfg *config.Config) (*introspect.Package, []organize.Section, error) {
	pkg, err := newLoader(cfg).Load(cfg.Project.Package)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", cfg.Project.Package, err)
	}
	sections := newOrganizer(cfg).Organize(pkg)

	qpath := quartoConfigPath(cfg)
	if err := site.UpdateSections(qpath, pkg.Name, sections); err != nil {
		return nil, nil, err
	}
	if err := site.UpdateSidebar(qpath, sections); err != nil {
		return nil, nil, err
	}

	opts := siteOptions(cfg, pkg.Name)
	llmsPath := filepath.Join(cfg.Project.DocsDir, "llms.txt")
	if err := site.WriteLLMsTxt(llmsPath, opts, packageSummary(pkg), sections); err != nil {
		return nil, nil, err
	}

	var names []string
	for _, sym := range pkg.Symbols {
		names = append(names, sym.Name)
		for _, m := range sym.Members {
			names = append(names, sym.Name+"."+m.Name)
		}
	}
	if err := site.RewriteProseLinks(cfg.Project.DocsDir, site.ReferenceLinkMap(names)); err != nil {
		return nil, nil, err
	}

	ref := site.DetectGitRef(".", cfg.Source.Branch)
	if links := site.BuildSourceLinks(pkg, cfg.Source, ref); links != nil {
		if err := site.WriteSourceLinks(sourceLinksPath(cfg), links); err != nil {
			return nil, nil, err
		}
	}

	if err := introspect.SaveSnapshot(config.SnapshotDir(), cfg.Project.Package, pkg); err != nil {
		slog.Warn("failed to cache snapshot", "package", pkg.Name, "reason", err)
	}

	return pkg, sections, nil
}

// packageSummary pulls the first line of the package-level doc, if the
// loader surfaced one.
func packageSummary(pkg *introspect.Package) string {
	for _, sym := range pkg.Symbols {
		if sym.Kind == introspect.KindModule {
			doc := directive.Strip(sym.Doc)
			if i := strings.Index(doc, "\n"); i >= 0 {
				doc = doc[:i]
			}
			return doc
		}
	}
	return ""
}
