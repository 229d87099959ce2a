package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/site"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove docsmith-managed files from the docs directory",
	Long: `Removes the installed assets, the generated llms.txt and source-link
map, and strips the docsmith-managed keys from _quarto.yml. Content you
wrote yourself is left alone.`,
	Args: cobra.NoArgs,
	Run:  runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	docsDir := cfg.Project.DocsDir

	if err := site.RemoveAssets(docsDir); err != nil {
		log.Fatalf("failed to remove assets: %v", err)
	}

	for _, name := range []string{"llms.txt", "_source_links.json"} {
		path := filepath.Join(docsDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("failed to remove %s: %v", name, err)
		}
	}

	if err := site.CleanConfig(quartoConfigPath(cfg)); err != nil {
		log.Fatalf("failed to clean _quarto.yml: %v", err)
	}

	fmt.Printf("Removed docsmith files from %s/\n", docsDir)
}
