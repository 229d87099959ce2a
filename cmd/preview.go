package cmd

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsmith/docsmith/internal/builder"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Regenerate sections and serve a live preview",
	Args:  cobra.NoArgs,
	Run:   runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if _, _, err := refresh(cfg); err != nil {
		log.Fatalf("failed to generate sections: %v", err)
	}

	b := builder.New(cfg.Build.Tool, cfg.Project.DocsDir,
		time.Duration(cfg.Build.TimeoutSeconds)*time.Second)
	if err := b.Check(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Preview(ctx); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
		log.Fatalf("preview failed: %v", err)
	}
}
