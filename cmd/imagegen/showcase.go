package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/shouni/image-generator-kit/pkg/config"
	"github.com/shouni/image-generator-kit/pkg/controller"
	"github.com/shouni/image-generator-kit/pkg/server"
	"github.com/shouni/image-generator-kit/pkg/showcase"
)

var showcaseCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Serve the showcase page that drives the generation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := buildShowcaseHandler(cfg)
		if err != nil {
			return err
		}
		return server.Run(cmd.Context(), cfg.ShowcaseAddr(), handler)
	},
}

func buildShowcaseHandler(c *config.Config) (http.Handler, error) {
	ctrl, err := controller.New(c.GenerateEndpoint,
		controller.WithTimeout(c.GenerateTimeout),
		controller.WithOnGenerate(showcase.LogGenerated),
		controller.WithOnError(showcase.LogError),
	)
	if err != nil {
		return nil, err
	}
	shell, err := showcase.NewShell(ctrl)
	if err != nil {
		return nil, err
	}
	return showcase.NewRouter(shell, c.GenerateEndpoint)
}
