package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// 生成バックエンドの種類
const (
	BackendImagen = "imagen"
	BackendGemini = "gemini"
	BackendStatic = "static"
)

var (
	ErrUnknownBackend     = errors.New("unknown generator backend")
	ErrMissingCredentials = errors.New("GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT is required")
	errGeminiKey          = errors.New("GEMINI_API_KEY is required")
)

// Config は環境変数から読み込むアプリケーション設定です。
type Config struct {
	// サーバー
	Port         int      `env:"PORT" envDefault:"8000"`
	ShowcasePort int      `env:"SHOWCASE_PORT" envDefault:"3000"`
	Version      string   `env:"APP_VERSION" envDefault:"0.1.0"`
	Environment  string   `env:"APP_ENV" envDefault:"development"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// 生成バックエンド
	Backend       string        `env:"GENERATOR_BACKEND" envDefault:"imagen"`
	ImagenModel   string        `env:"IMAGEN_MODEL" envDefault:"imagen-3.0-generate-001"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-image"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	Project       string        `env:"GOOGLE_CLOUD_PROJECT"`
	Location      string        `env:"GOOGLE_CLOUD_LOCATION" envDefault:"us-central1"`
	MaxRetries    int           `env:"GENERATION_MAX_RETRIES" envDefault:"2"`
	RetryInterval time.Duration `env:"GENERATION_RETRY_INTERVAL" envDefault:"1s"`

	// 保存先
	StorageURI         string        `env:"STORAGE_URI" envDefault:"./generated-images"`
	PublicBaseURL      string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8000"`
	ImagePublicBaseURL string        `env:"IMAGE_PUBLIC_BASE_URL"`
	SignedURLTTL       time.Duration `env:"SIGNED_URL_TTL" envDefault:"168h"`
	Compress           bool          `env:"IMAGE_COMPRESSION" envDefault:"false"`
	CompressionQuality int           `env:"IMAGE_COMPRESSION_QUALITY" envDefault:"75"`

	// キャッシュとメタデータ
	RedisURL    string        `env:"REDIS_URL"`
	CacheSize   int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	DatabaseDSN string        `env:"DATABASE_DSN"`

	// ショーケース
	GenerateEndpoint string        `env:"GENERATE_ENDPOINT" envDefault:"http://localhost:8000/generate_image/"`
	GenerateTimeout  time.Duration `env:"GENERATE_TIMEOUT" envDefault:"0s"`
}

// Load は .env があれば読み込んだうえで環境変数を解析します。
func Load() (*Config, error) {
	loadEnvFiles(".env")
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles は存在する .env だけを読み込みます。既に設定済みの環境変数は上書きしません。
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
		}
	}
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.Project = strings.TrimSpace(c.Project)
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.ImagePublicBaseURL = strings.TrimRight(strings.TrimSpace(c.ImagePublicBaseURL), "/")

	origins := c.AllowOrigins[:0]
	for _, o := range c.AllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowOrigins = origins
}

// Validate は組み合わせとして成立しない設定を検出します。
func (c *Config) Validate() error {
	if c.Port <= 0 || c.ShowcasePort <= 0 {
		return fmt.Errorf("PORT and SHOWCASE_PORT must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("GENERATION_MAX_RETRIES must not be negative: %d", c.MaxRetries)
	}
	if c.CompressionQuality < 1 || c.CompressionQuality > 100 {
		return fmt.Errorf("IMAGE_COMPRESSION_QUALITY must be between 1 and 100: %d", c.CompressionQuality)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive: %d", c.CacheSize)
	}
	if c.GenerateTimeout < 0 {
		return fmt.Errorf("GENERATE_TIMEOUT must not be negative: %s", c.GenerateTimeout)
	}
	return nil
}

// ValidateBackend は生成バックエンドの種類と認証情報を確認します。serve だけが必要とします。
func (c *Config) ValidateBackend() error {
	switch c.Backend {
	case BackendImagen:
		if c.GeminiAPIKey == "" && c.Project == "" {
			return fmt.Errorf("%s backend: %w", c.Backend, ErrMissingCredentials)
		}
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%s backend: %w", c.Backend, errGeminiKey)
		}
	case BackendStatic:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

// Addr はサービスの待ち受けアドレスです。
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// ShowcaseAddr はデモページの待ち受けアドレスです。
func (c *Config) ShowcaseAddr() string { return fmt.Sprintf(":%d", c.ShowcasePort) }

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
