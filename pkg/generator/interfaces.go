package generator

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

// ImageGenerator はサービス層が利用する画像生成の統合窓口です。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error)
}

// ImagesModel は Imagen 系モデルの画像生成 API です。*genai.Models がこれを満たします。
type ImagesModel interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}
