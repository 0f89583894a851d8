package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/service"
)

// Generator は生成パイプラインの入口です。*service.GenerationService がこれを満たします。
type Generator interface {
	Generate(ctx context.Context, req domain.ImageGenerationRequest) (*service.Outcome, error)
}

// ImageReader はローカル保存した画像を配信するための読み出し口です。
type ImageReader interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Deps はルーター構築に必要な依存関係です。
type Deps struct {
	Generator Generator
	// Images が nil なら /images は公開しません。
	Images       ImageReader
	Version      string
	AllowOrigins []string
}

// NewRouter は生成サービスの gin エンジンを組み立てます。
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if deps.Version == "" {
		deps.Version = "0.1.0"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware())
	r.Use(cors.New(corsConfig(deps.AllowOrigins)))

	h := &Handler{generator: deps.Generator, images: deps.Images, version: deps.Version}
	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
