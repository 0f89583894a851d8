package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/shouni/image-generator-kit/pkg/config"
	"github.com/shouni/image-generator-kit/pkg/server"
	"github.com/shouni/image-generator-kit/pkg/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the image generation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateBackend(); err != nil {
			return err
		}
		ctx := cmd.Context()
		handler, cleanup, err := buildServiceHandler(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup.Close()
		return server.Run(ctx, cfg.Addr(), handler)
	},
}

// buildServiceHandler は生成サービスの依存関係をすべて組み立てます。
func buildServiceHandler(ctx context.Context, c *config.Config) (http.Handler, closers, error) {
	var cs closers
	fail := func(err error) (http.Handler, closers, error) {
		cs.Close()
		return nil, nil, err
	}

	gen, model, err := buildGenerator(ctx, c)
	if err != nil {
		return fail(err)
	}
	store, err := buildStore(ctx, c)
	if err != nil {
		return fail(err)
	}
	cs = append(cs, store)

	repo, repoCloser, err := buildRepository(ctx, c)
	if err != nil {
		return fail(err)
	}
	if repoCloser != nil {
		cs = append(cs, repoCloser)
	}
	cache, cacheCloser, err := buildCache(ctx, c)
	if err != nil {
		return fail(err)
	}
	if cacheCloser != nil {
		cs = append(cs, cacheCloser)
	}

	svc, err := service.New(gen, store, repo, cache, service.Config{
		Model:              model,
		CacheTTL:           c.CacheTTL,
		Compress:           c.Compress,
		CompressionQuality: c.CompressionQuality,
	})
	if err != nil {
		return fail(err)
	}

	deps := server.Deps{
		Generator:    svc,
		Version:      c.Version,
		AllowOrigins: c.AllowOrigins,
	}
	if !store.Remote() {
		deps.Images = store
	}
	router, err := server.NewRouter(deps)
	if err != nil {
		return fail(err)
	}
	return router, cs, nil
}
