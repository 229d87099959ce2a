package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/site"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the docs site in the current project",
	Long: `Creates the docs directory, installs the shipped assets, writes the
Quarto project configuration, generates the reference sections for the
configured package, and seeds index.qmd from the README.`,
	Args: cobra.NoArgs,
	Run:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite installed assets")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	docsDir := cfg.Project.DocsDir

	if err := site.InstallAssets(docsDir, initForce); err != nil {
		log.Fatalf("failed to install assets: %v", err)
	}

	pkg, sections, err := refresh(cfg)
	if err != nil {
		log.Fatalf("failed to generate sections: %v", err)
	}

	if err := site.EnsureConfig(quartoConfigPath(cfg), siteOptions(cfg, pkg.Name)); err != nil {
		log.Fatalf("failed to write _quarto.yml: %v", err)
	}

	title := cfg.Project.SiteTitle
	if title == "" {
		title = pkg.Name
	}
	indexPath := filepath.Join(docsDir, "index.qmd")
	if err := site.CreateIndexFromReadme("README.md", indexPath, title); err != nil {
		log.Fatalf("failed to create index.qmd: %v", err)
	}

	fmt.Printf("Initialized docs for %s in %s/\n", pkg.Name, docsDir)
	fmt.Printf("  %d symbols organized into %d sections\n", len(pkg.Symbols), len(sections))
	fmt.Println("Run `docsmith build` to render the site.")
}
