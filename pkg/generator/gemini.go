package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/utils"
)

// GeminiGenerator は Gemini の画像出力モデルで1枚の画像を生成するジェネレーターです。
type GeminiGenerator struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(aiClient gemini.GenerativeModel, model string) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{aiClient: aiClient, model: model}, nil
}

// Generate はプロンプトを Gemini に送り、返ってきた画像パーツを取り出すのだ。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	slog.InfoContext(ctx, "Gemini 生成リクエスト", "model", g.model)

	parts := []*genai.Part{{Text: buildGeminiPrompt(req)}}
	opts := gemini.GenerateOptions{
		AspectRatio: req.AspectRatio,
		Seed:        req.Seed,
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, opts)
	if err != nil {
		return nil, fmt.Errorf("Gemini 画像生成エラー: %w", err) // 呼び出し元でリトライ判定するのだ
	}

	out, err := parseToResponse(resp, utils.DereferenceSeed(req.Seed))
	if err != nil {
		return nil, err
	}
	return &domain.ImageResponse{
		Data:     out.Data,
		MimeType: out.MimeType,
		UsedSeed: out.UsedSeed,
	}, nil
}

// buildGeminiPrompt は Gemini に negative prompt の設定項目が無いため本文に含めるのだ。
func buildGeminiPrompt(req domain.ImageGenerationRequest) string {
	if req.NegativePrompt == "" {
		return req.Prompt
	}
	return req.Prompt + "\nAvoid: " + req.NegativePrompt
}
