package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/state"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show known packages and recent builds",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "machine-readable output")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	db, err := state.Open(config.StatePath())
	if err != nil {
		log.Fatalf("failed to open build state: %v", err)
	}
	defer db.Close()

	pkgs, err := db.ListPackages()
	if err != nil {
		log.Fatalf("failed to list packages: %v", err)
	}
	builds, err := db.RecentBuilds(10)
	if err != nil {
		log.Fatalf("failed to list builds: %v", err)
	}

	if statusJSON {
		out := map[string]interface{}{"packages": pkgs, "builds": builds}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("failed to encode status: %v", err)
		}
		return
	}

	if len(pkgs) == 0 {
		fmt.Println("No packages built yet. Run `docsmith build`.")
		return
	}

	fmt.Println("Packages:")
	for _, p := range pkgs {
		line := fmt.Sprintf("  %-40s %d symbols", p.Name, p.SymbolCount)
		if p.BuiltAt != nil {
			line += ", built " + p.BuiltAt.Format(time.RFC3339)
		} else {
			line += ", never built"
		}
		fmt.Println(line)
	}

	if len(builds) > 0 {
		fmt.Println("Recent builds:")
		for _, b := range builds {
			fmt.Printf("  %s  %-40s %-6s %s\n",
				b.StartedAt.Format("2006-01-02 15:04:05"), b.PackageName, b.Status,
				b.Duration.Round(time.Millisecond))
		}
	}
}
