package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shouni/image-generator-kit/pkg/config"
)

// cfg は PersistentPreRunE で読み込まれます。
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "imagegen",
	Short: "Image generation service, showcase page and CLI client",
	Long: `imagegen bundles the image generation service, the showcase page
that drives it through the request controller, and a one-shot client.

Examples:
  imagegen serve
  imagegen showcase
  imagegen generate --subject "A serene mountain landscape" --output ./out.png`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(config.NewLogger(cfg, os.Stderr))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showcaseCmd)
	rootCmd.AddCommand(generateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
