package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/image-generator-kit/pkg/adapters"
	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/generator"
	"github.com/shouni/image-generator-kit/pkg/imgutil"
)

// ErrMetadataStore は画像の保存後にメタデータの記録に失敗したことを示します。
var ErrMetadataStore = errors.New("Failed to store image metadata")

// GenerationError はバックエンドでの生成が再試行後も失敗したことを表します。
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

// Source は結果の取得元です。
type Source string

const (
	SourceCache      Source = "cache"
	SourceRepository Source = "repository"
	SourceGenerated  Source = "generated"
)

// Outcome は1回の生成要求の結果です。
type Outcome struct {
	ImageURL   string
	PromptHash string
	Source     Source
}

// ImageStore は生成画像の保存先です。
// URLFor は呼び出しごとに参照用 URL を払い出します。署名付き URL は期限切れになるため保存しません。
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (*domain.StoredImage, error)
	URLFor(ctx context.Context, name string) (string, error)
}

// Config は生成パイプラインの設定です。
type Config struct {
	// Model はキャッシュキーに含めるモデル名です。
	Model              string
	CacheTTL           time.Duration
	Compress           bool
	CompressionQuality int
}

// GenerationService はキャッシュ参照、生成、保存、記録を順に行うパイプラインです。
type GenerationService struct {
	generator generator.ImageGenerator
	store     ImageStore
	repo      adapters.ImageRepository
	cache     adapters.ImageCacher
	cfg       Config
	newName   func(ext string) string
}

// New は依存関係を注入して GenerationService を初期化します。cache は nil を許容します。
func New(gen generator.ImageGenerator, store ImageStore, repo adapters.ImageRepository, cache adapters.ImageCacher, cfg Config) (*GenerationService, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if cfg.CompressionQuality <= 0 || cfg.CompressionQuality > 100 {
		cfg.CompressionQuality = 75
	}
	return &GenerationService{
		generator: gen,
		store:     store,
		repo:      repo,
		cache:     cache,
		cfg:       cfg,
		newName:   func(ext string) string { return uuid.NewString() + ext },
	}, nil
}

// Generate は要求に対応する画像 URL を返します。既に生成済みなら再利用します。
func (s *GenerationService) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*Outcome, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	hash := PromptHash(req, s.cfg.Model)
	log := slog.With("prompt_hash", hash)

	if name, ok := s.lookupCache(hash); ok {
		url, err := s.store.URLFor(ctx, name)
		if err == nil {
			log.InfoContext(ctx, "キャッシュから画像を返します", "name", name)
			return &Outcome{ImageURL: url, PromptHash: hash, Source: SourceCache}, nil
		}
		log.WarnContext(ctx, "キャッシュ済み画像の URL を解決できませんでした", "name", name, "error", err)
	}

	name, err := s.repo.FindByPromptHash(ctx, hash)
	switch {
	case err == nil:
		url, uerr := s.store.URLFor(ctx, name)
		if uerr == nil {
			log.InfoContext(ctx, "保存済みの画像を返します", "name", name)
			s.storeCache(hash, name)
			return &Outcome{ImageURL: url, PromptHash: hash, Source: SourceRepository}, nil
		}
		log.WarnContext(ctx, "保存済み画像の URL を解決できないため生成を続行します", "name", name, "error", uerr)
	case !errors.Is(err, adapters.ErrNotFound):
		log.WarnContext(ctx, "メタデータの参照に失敗したため生成を続行します", "error", err)
	}

	resp, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	data, declared := s.maybeCompress(ctx, resp)
	format := imgutil.DetectFormat(data, declared)
	stored, err := s.store.Save(ctx, s.newName(format.Extension), data, format.ContentType)
	if err != nil {
		return nil, fmt.Errorf("画像の保存に失敗しました: %w", err)
	}

	if err := s.repo.Save(ctx, hash, stored.Name); err != nil {
		log.ErrorContext(ctx, "メタデータの記録に失敗しました。保存済みの画像は残ります", "uri", stored.URI, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrMetadataStore, err)
	}
	s.storeCache(hash, stored.Name)

	log.InfoContext(ctx, "画像を生成しました", "uri", stored.URI, "bytes", len(data))
	return &Outcome{ImageURL: stored.URL, PromptHash: hash, Source: SourceGenerated}, nil
}

func (s *GenerationService) lookupCache(hash string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	val, ok := s.cache.Get(hash)
	if !ok {
		return "", false
	}
	name, ok := val.(string)
	return name, ok && name != ""
}

// storeCache はオブジェクト名をキャッシュします。URL は参照のたびに解決します。
func (s *GenerationService) storeCache(hash, name string) {
	if s.cache != nil {
		s.cache.Set(hash, name, s.cfg.CacheTTL)
	}
}

// maybeCompress は設定が有効なら JPEG に変換します。失敗した場合は元データを使います。
func (s *GenerationService) maybeCompress(ctx context.Context, resp *domain.ImageResponse) ([]byte, string) {
	if !s.cfg.Compress {
		return resp.Data, resp.MimeType
	}
	compressed, err := imgutil.CompressToJPEG(resp.Data, s.cfg.CompressionQuality)
	if err != nil {
		slog.WarnContext(ctx, "画像の圧縮に失敗したため元データを保存します", "error", err)
		return resp.Data, resp.MimeType
	}
	return compressed, imgutil.JPEGMimeType
}

// PromptHash は生成結果を左右する項目から決まるキャッシュキーです。
func PromptHash(req domain.ImageGenerationRequest, model string) string {
	seed := ""
	if req.Seed != nil {
		seed = strconv.FormatInt(*req.Seed, 10)
	}
	scale := ""
	if req.CfgScale != nil {
		scale = strconv.FormatFloat(*req.CfgScale, 'f', -1, 64)
	}
	h := sha256.New()
	for _, part := range []string{req.Prompt, req.NegativePrompt, req.AspectRatio, seed, scale, model} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
