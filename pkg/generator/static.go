package generator

import (
	"context"
	"hash/fnv"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/imgutil"
	"github.com/shouni/image-generator-kit/pkg/utils"
)

// StaticGenerator は外部 API を使わずにプロンプトから決定的な PNG を作ります。
// ローカル開発とデモ用です。
type StaticGenerator struct {
	size int
}

// NewStaticGenerator は一辺 size ピクセルの画像を返すジェネレーターを作ります。
func NewStaticGenerator(size int) *StaticGenerator {
	if size <= 0 {
		size = 256
	}
	return &StaticGenerator{size: size}
}

// Generate はプロンプトとシードのハッシュから色を決めた画像を返します。
func (g *StaticGenerator) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(req.Prompt))
	seed := utils.DereferenceSeed(req.Seed)

	data, err := imgutil.RenderPlaceholder(g.size, g.size, h.Sum64()^uint64(seed))
	if err != nil {
		return nil, err
	}
	return &domain.ImageResponse{Data: data, MimeType: "image/png", UsedSeed: seed}, nil
}
