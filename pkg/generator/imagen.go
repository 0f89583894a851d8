package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/utils"
)

// ImagenConfig は Imagen クライアント生成時の設定です。
// Project があれば Vertex AI、無ければ APIKey で Gemini API を使います。
type ImagenConfig struct {
	APIKey   string
	Project  string
	Location string
}

// Backend は設定から使われる genai のバックエンドを返します。
func (c ImagenConfig) Backend() genai.Backend {
	switch {
	case c.Project != "":
		return genai.BackendVertexAI
	case c.APIKey != "":
		return genai.BackendGeminiAPI
	default:
		return genai.BackendUnspecified
	}
}

// NewImagenClient は設定に応じたバックエンドで genai クライアントを作成します。
func NewImagenClient(ctx context.Context, cfg ImagenConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{Backend: cfg.Backend()}
	switch cc.Backend {
	case genai.BackendVertexAI:
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	case genai.BackendGeminiAPI:
		cc.APIKey = cfg.APIKey
	default:
		return nil, fmt.Errorf("either project or api key is required")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// ImagenGenerator は Imagen モデルで1枚の画像を生成します。
type ImagenGenerator struct {
	models  ImagesModel
	model   string
	backend genai.Backend
}

// ImagenOption は ImagenGenerator の設定を変更します。
type ImagenOption func(*ImagenGenerator)

// WithImagenBackend はクライアントのバックエンドを指定します。既定は Vertex AI です。
// Gemini API は negative prompt と seed を受け付けないため、送信内容を切り替えます。
func WithImagenBackend(b genai.Backend) ImagenOption {
	return func(g *ImagenGenerator) { g.backend = b }
}

// NewImagenGenerator は ImagenGenerator を初期化します。
func NewImagenGenerator(models ImagesModel, model string, opts ...ImagenOption) (*ImagenGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("models (ImagesModel) is required")
	}
	if model == "" {
		model = DefaultImagenModel
	}
	g := &ImagenGenerator{models: models, model: model, backend: genai.BackendVertexAI}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate は生成要求を Imagen の設定に変換して実行します。
func (g *ImagenGenerator) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	prompt, cfg := g.buildRequest(req)
	slog.InfoContext(ctx, "Imagen 生成リクエスト", "model", g.model, "backend", g.backend, "aspect_ratio", cfg.AspectRatio)

	resp, err := g.models.GenerateImages(ctx, g.model, prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("Imagen 画像生成エラー: %w", err)
	}

	// int32 に丸めた後の実際に送った seed を返す
	out, err := parseImagesResponse(resp, utils.DereferenceSeed(utils.SeedToPtrInt64(cfg.Seed)))
	if err != nil {
		return nil, err
	}
	return &domain.ImageResponse{
		Data:     out.Data,
		MimeType: out.MimeType,
		UsedSeed: out.UsedSeed,
	}, nil
}

// buildRequest はバックエンドに合わせてプロンプトと設定を組み立てます。
// Gemini API では negative prompt をプロンプト本文に含め、seed は送りません。
func (g *ImagenGenerator) buildRequest(req domain.ImageGenerationRequest) (string, *genai.GenerateImagesConfig) {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = domain.DefaultAspectRatio
	}
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages:    1,
		Language:          genai.ImagePromptLanguageEn,
		AspectRatio:       aspect,
		SafetyFilterLevel: genai.SafetyFilterLevelBlockMediumAndAbove,
		GuidanceScale:     utils.Float64ToPtrFloat32(req.CfgScale),
		IncludeRAIReason:  true,
	}
	if g.backend == genai.BackendGeminiAPI {
		return buildGeminiPrompt(req), cfg
	}
	cfg.NegativePrompt = req.NegativePrompt
	cfg.Seed = utils.SeedToPtrInt32(req.Seed)
	return req.Prompt, cfg
}
