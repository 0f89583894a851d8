package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/imgutil"
	"github.com/shouni/image-generator-kit/pkg/service"
)

const maxImageServeSize = 25 << 20

// HealthResponse は /health の応答です。
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Handler は生成サービスの HTTP ハンドラー群です。
type Handler struct {
	generator Generator
	images    ImageReader
	version   string
}

// RegisterRoutes はルートを登録します。
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.POST("/generate_image/", h.GenerateImage)
	r.POST("/generate_image", h.GenerateImage)
	if h.images != nil {
		r.GET("/images/:name", h.ServeImage)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: h.version})
}

// generateImageJSON は JSON で受け付ける生成要求です。prompt があれば合成せずにそのまま使います。
type generateImageJSON struct {
	Prompt         string   `json:"prompt"`
	Subject        string   `json:"subject"`
	Style          string   `json:"style"`
	Context        string   `json:"context"`
	NegativePrompt string   `json:"negative_prompt"`
	Seed           *int64   `json:"seed"`
	CfgScale       *float64 `json:"cfg_scale"`
}

func (h *Handler) GenerateImage(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := parseGenerateRequest(c)
	if err != nil {
		GenerationsTotal.WithLabelValues("none", "invalid").Inc()
		c.JSON(http.StatusUnprocessableEntity, domain.ErrorDetail{Detail: err.Error()})
		return
	}

	out, err := h.generator.Generate(ctx, req)
	if err != nil {
		GenerationsTotal.WithLabelValues("none", "error").Inc()
		slog.ErrorContext(ctx, "画像生成要求の処理に失敗しました", "request_id", RequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, domain.ErrorDetail{Detail: errorDetail(err)})
		return
	}

	GenerationsTotal.WithLabelValues(string(out.Source), "ok").Inc()
	c.JSON(http.StatusOK, domain.GenerationResult{ImageURL: out.ImageURL})
}

func errorDetail(err error) string {
	var ge *service.GenerationError
	switch {
	case errors.As(err, &ge):
		return "Image generation failed: " + ge.Error()
	case errors.Is(err, service.ErrMetadataStore):
		return service.ErrMetadataStore.Error()
	default:
		return "Unexpected error occurred: " + err.Error()
	}
}

// parseGenerateRequest はフォームまたは JSON の本文を生成要求に変換します。
func parseGenerateRequest(c *gin.Context) (domain.ImageGenerationRequest, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body generateImageJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return domain.ImageGenerationRequest{}, errors.New("invalid JSON body")
		}
		gr := domain.GenerationRequest{
			Subject:        body.Subject,
			Style:          body.Style,
			Context:        body.Context,
			NegativePrompt: body.NegativePrompt,
			Seed:           body.Seed,
			CfgScale:       body.CfgScale,
		}
		if strings.TrimSpace(body.Prompt) != "" {
			if err := validateOptional(gr); err != nil {
				return domain.ImageGenerationRequest{}, err
			}
			ir := gr.ToImageRequest()
			ir.Prompt = strings.TrimSpace(body.Prompt)
			return ir, nil
		}
		if err := gr.Validate(); err != nil {
			return domain.ImageGenerationRequest{}, err
		}
		return gr.ToImageRequest(), nil
	}

	gr := domain.GenerationRequest{
		Subject:        c.PostForm("subject"),
		Style:          c.PostForm("style"),
		Context:        c.PostForm("context"),
		NegativePrompt: c.PostForm("negative_prompt"),
	}
	if raw := strings.TrimSpace(c.PostForm("seed")); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.ImageGenerationRequest{}, errors.New("seed must be an integer")
		}
		gr.Seed = &seed
	}
	if raw := strings.TrimSpace(c.PostForm("cfg_scale")); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.ImageGenerationRequest{}, errors.New("cfg_scale must be a number")
		}
		gr.CfgScale = &scale
	}
	if err := gr.Validate(); err != nil {
		return domain.ImageGenerationRequest{}, err
	}
	return gr.ToImageRequest(), nil
}

func validateOptional(gr domain.GenerationRequest) error {
	if err := domain.ValidateSeed(gr.Seed); err != nil {
		return err
	}
	return domain.ValidateCfgScale(gr.CfgScale)
}

func (h *Handler) ServeImage(c *gin.Context) {
	name := c.Param("name")
	rc, err := h.images.Open(c.Request.Context(), name)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "画像が見つかりません", "name", name, "error", err)
		c.JSON(http.StatusNotFound, domain.ErrorDetail{Detail: "Image not found"})
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxImageServeSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, domain.ErrorDetail{Detail: "Unexpected error occurred: " + err.Error()})
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, imgutil.DetectFormat(data, "").ContentType, data)
}
