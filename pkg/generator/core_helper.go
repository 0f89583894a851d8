package generator

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// parseToResponse は Gemini のレスポンスから最初の画像パーツを取り出すのだ。
func parseToResponse(resp *gemini.Response, seed int64) (*ImageOutput, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("invalid response")
	}
	candidate := resp.RawResponse.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w (reason: %v)", ErrContentFiltered, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return nil, ErrNoImage
	}
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &ImageOutput{
				Data:     part.InlineData.Data,
				MimeType: detectMimeType(part.InlineData.Data, part.InlineData.MIMEType),
				UsedSeed: seed,
			}, nil
		}
	}
	return nil, ErrNoImage
}

// parseImagesResponse は Imagen のレスポンスから最初の画像を取り出すのだ。
func parseImagesResponse(resp *genai.GenerateImagesResponse, seed int64) (*ImageOutput, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, ErrNoImage
	}
	var reasons []string
	for _, img := range resp.GeneratedImages {
		if img == nil {
			continue
		}
		if img.Image != nil && len(img.Image.ImageBytes) > 0 {
			return &ImageOutput{
				Data:     img.Image.ImageBytes,
				MimeType: detectMimeType(img.Image.ImageBytes, img.Image.MIMEType),
				UsedSeed: seed,
			}, nil
		}
		if img.RAIFilteredReason != "" {
			reasons = append(reasons, img.RAIFilteredReason)
		}
	}
	if len(reasons) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrContentFiltered, strings.Join(reasons, "; "))
	}
	return nil, ErrNoImage
}

// detectMimeType は宣言された MIME が無ければ中身から推定します。
func detectMimeType(data []byte, declared string) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return mimetype.Detect(data).String()
}
