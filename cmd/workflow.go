package cmd

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
)

//go:embed github-workflow.yml
var workflowTemplate string

var (
	workflowMainBranch string
	workflowGoVersion  string
	workflowForce      bool
)

var workflowCmd = &cobra.Command{
	Use:   "setup-github-pages",
	Short: "Write a GitHub Actions workflow that deploys the docs",
	Args:  cobra.NoArgs,
	Run:   runWorkflow,
}

func init() {
	workflowCmd.Flags().StringVar(&workflowMainBranch, "main-branch", "main", "branch that triggers deployment")
	workflowCmd.Flags().StringVar(&workflowGoVersion, "go-version", "1.24", "Go version used in CI")
	workflowCmd.Flags().BoolVar(&workflowForce, "force", false, "overwrite an existing workflow")
	rootCmd.AddCommand(workflowCmd)
}

func runWorkflow(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	path := filepath.Join(".github", "workflows", "docs.yml")
	if _, err := os.Stat(path); err == nil && !workflowForce {
		log.Fatalf("%s already exists (use --force to overwrite)", path)
	}

	// The workflow's own ${{ }} expressions must survive templating.
	tmpl, err := template.New("workflow").Delims("[[", "]]").Parse(workflowTemplate)
	if err != nil {
		log.Fatalf("failed to parse workflow template: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("failed to create workflow dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("failed to create workflow file: %v", err)
	}
	defer f.Close()

	data := struct {
		MainBranch string
		GoVersion  string
		DocsDir    string
	}{workflowMainBranch, workflowGoVersion, cfg.Project.DocsDir}
	if err := tmpl.Execute(f, data); err != nil {
		log.Fatalf("failed to write workflow: %v", err)
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Enable GitHub Pages with source \"GitHub Actions\" in the repository settings.")
}
