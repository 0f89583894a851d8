package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/image-generator-kit/pkg/adapters"
	"github.com/shouni/image-generator-kit/pkg/config"
	"github.com/shouni/image-generator-kit/pkg/generator"
)

const staticImageSize = 512

// closers は起動時に開いた資源を逆順に閉じます。
type closers []io.Closer

func (cs closers) Close() {
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].Close(); err != nil {
			slog.Warn("リソースの解放に失敗しました", "error", err)
		}
	}
}

// buildGenerator は設定されたバックエンドを再試行付きで組み立て、キャッシュキー用のモデル名と共に返します。
func buildGenerator(ctx context.Context, c *config.Config) (generator.ImageGenerator, string, error) {
	var (
		gen   generator.ImageGenerator
		model string
		err   error
	)
	switch c.Backend {
	case config.BackendImagen:
		imagenCfg := generator.ImagenConfig{
			APIKey:   c.GeminiAPIKey,
			Project:  c.Project,
			Location: c.Location,
		}
		client, cerr := generator.NewImagenClient(ctx, imagenCfg)
		if cerr != nil {
			return nil, "", cerr
		}
		model = c.ImagenModel
		gen, err = generator.NewImagenGenerator(client.Models, model, generator.WithImagenBackend(imagenCfg.Backend()))
	case config.BackendGemini:
		client, cerr := gemini.NewClient(ctx, geminiClientConfig(c))
		if cerr != nil {
			return nil, "", fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", cerr)
		}
		model = c.GeminiModel
		gen, err = generator.NewGeminiGenerator(client, model)
	case config.BackendStatic:
		model = config.BackendStatic
		gen = generator.NewStaticGenerator(staticImageSize)
	default:
		return nil, "", fmt.Errorf("%w: %q", config.ErrUnknownBackend, c.Backend)
	}
	if err != nil {
		return nil, "", err
	}

	slog.InfoContext(ctx, "生成バックエンドを初期化しました", "backend", c.Backend, "model", model, "max_retries", c.MaxRetries)
	// 0 回指定、またはクライアント自身が再試行するバックエンドは包まない
	if c.MaxRetries == 0 || c.Backend == config.BackendGemini {
		return gen, model, nil
	}
	retrying, err := generator.NewRetryingGenerator(gen, uint64(c.MaxRetries), c.RetryInterval)
	if err != nil {
		return nil, "", err
	}
	return retrying, model, nil
}

// geminiClientConfig はリトライ設定を Gemini クライアントへ渡します。
// クライアントは 0 回指定を既定値の 1 回として扱います。
func geminiClientConfig(c *config.Config) gemini.Config {
	return gemini.Config{
		APIKey:       c.GeminiAPIKey,
		MaxRetries:   uint64(c.MaxRetries),
		InitialDelay: c.RetryInterval,
		MaxDelay:     max(generator.DefaultMaxInterval, c.RetryInterval),
	}
}

// buildStore は保存先を開きます。ローカル保存では /images から配信する URL を使います。
func buildStore(ctx context.Context, c *config.Config) (*adapters.ImageStore, error) {
	publicBase := c.ImagePublicBaseURL
	if publicBase == "" && !remoteio.IsRemoteURI(c.StorageURI) {
		publicBase = c.PublicBaseURL + "/images"
	}
	return adapters.OpenImageStore(ctx, adapters.StoreConfig{
		BaseURI:       c.StorageURI,
		PublicBaseURL: publicBase,
		SignedURLTTL:  c.SignedURLTTL,
	})
}

// buildRepository は DATABASE_DSN があれば Postgres、無ければメモリ上のリポジトリを返します。
func buildRepository(ctx context.Context, c *config.Config) (adapters.ImageRepository, io.Closer, error) {
	if c.DatabaseDSN == "" {
		slog.InfoContext(ctx, "メタデータはメモリに保持します")
		return adapters.NewMemoryRepository(), nil, nil
	}
	db, err := adapters.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	repo, err := adapters.NewPostgresRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repo, db, nil
}

// buildCache は REDIS_URL があれば Redis、無ければプロセス内 LRU を返します。
func buildCache(ctx context.Context, c *config.Config) (adapters.ImageCacher, io.Closer, error) {
	if c.RedisURL == "" {
		cache, err := adapters.NewMemoryCache(c.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		return cache, nil, nil
	}
	cache, err := adapters.NewRedisCache(ctx, c.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache, nil
}
