package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/image-generator-kit/pkg/controller"
	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, gen *mockGenerator, images ImageReader) *gin.Engine {
	t.Helper()
	r, err := NewRouter(Deps{Generator: gen, Images: images, Version: "0.1.0"})
	require.NoError(t, err)
	return r
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body domain.ErrorDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Detail
}

func TestNewRouter_RequiresGenerator(t *testing.T) {
	_, err := NewRouter(Deps{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &mockGenerator{}, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"0.1.0"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
}

func TestGenerateImage_Multipart(t *testing.T) {
	gen := &mockGenerator{}
	r := newTestRouter(t, gen, nil)

	body, ct := multipartBody(t, map[string]string{
		"subject":         "A medical cross symbol",
		"style":           "minimalist line art",
		"context":         "healthcare app with blue theme",
		"negative_prompt": "complex, detailed, photorealistic",
		"seed":            "42",
		"cfg_scale":       "8.5",
	})
	req := httptest.NewRequest(http.MethodPost, "/generate_image/", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"image_url":"http://localhost:8000/images/a.png"}`, rr.Body.String())

	got := gen.lastRequest()
	assert.Equal(t, "A medical cross symbol. Style: minimalist line art. Context: healthcare app with blue theme", got.Prompt)
	assert.Equal(t, "complex, detailed, photorealistic", got.NegativePrompt)
	require.NotNil(t, got.Seed)
	assert.Equal(t, int64(42), *got.Seed)
	require.NotNil(t, got.CfgScale)
	assert.Equal(t, 8.5, *got.CfgScale)
}

func TestGenerateImage_URLEncodedWithoutTrailingSlash(t *testing.T) {
	gen := &mockGenerator{}
	r := newTestRouter(t, gen, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate_image", strings.NewReader("subject=A+red+apple"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "A red apple", gen.lastRequest().Prompt)
	assert.Nil(t, gen.lastRequest().Seed)
}

func TestGenerateImage_JSONPrompt(t *testing.T) {
	gen := &mockGenerator{}
	r := newTestRouter(t, gen, nil)

	req := httptest.NewRequest(http.MethodPost, "/generate_image/", strings.NewReader(`{"prompt":"A sleek modern watch","negative_prompt":"blurry"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "A sleek modern watch", gen.lastRequest().Prompt)
	assert.Equal(t, "blurry", gen.lastRequest().NegativePrompt)
}

func TestGenerateImage_ValidationErrors(t *testing.T) {
	cases := []struct {
		name       string
		fields     map[string]string
		wantDetail string
	}{
		{"MissingSubject", map[string]string{"style": "x"}, domain.MsgSubjectRequired},
		{"BlankSubject", map[string]string{"subject": "   "}, domain.MsgSubjectRequired},
		{"BadSeed", map[string]string{"subject": "a", "seed": "abc"}, "seed must be an integer"},
		{"SeedOutOfRange", map[string]string{"subject": "a", "seed": "4294967295"}, "Seed must be between 0 and 4294967294"},
		{"BadCfgScale", map[string]string{"subject": "a", "cfg_scale": "x"}, "cfg_scale must be a number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockGenerator{}
			r := newTestRouter(t, gen, nil)

			body, ct := multipartBody(t, tc.fields)
			req := httptest.NewRequest(http.MethodPost, "/generate_image/", body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Equal(t, tc.wantDetail, decodeDetail(t, rr))
			assert.Empty(t, gen.lastRequest().Prompt)
		})
	}

	t.Run("InvalidJSON", func(t *testing.T) {
		r := newTestRouter(t, &mockGenerator{}, nil)
		req := httptest.NewRequest(http.MethodPost, "/generate_image/", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestGenerateImage_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantDetail string
	}{
		{"GenerationFailed", &service.GenerationError{Err: errors.New("quota exceeded")}, "Image generation failed: quota exceeded"},
		{"MetadataFailed", fmt.Errorf("%w: %w", service.ErrMetadataStore, errors.New("insert")), "Failed to store image metadata"},
		{"Unexpected", errors.New("disk full"), "Unexpected error occurred: disk full"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, &mockGenerator{err: tc.err}, nil)

			body, ct := multipartBody(t, map[string]string{"subject": "a"})
			req := httptest.NewRequest(http.MethodPost, "/generate_image/", body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.Equal(t, tc.wantDetail, decodeDetail(t, rr))
		})
	}
}

func TestServeImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("0", 16))
	r := newTestRouter(t, &mockGenerator{}, mapReader{"a.png": png})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/a.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, png, rr.Body.Bytes())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeImage_DisabledWithoutReader(t *testing.T) {
	r := newTestRouter(t, &mockGenerator{}, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/a.png", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	r := newTestRouter(t, &mockGenerator{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/generate_image/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Less(t, rr.Code, 300)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
	cfg := corsConfig([]string{"http://localhost:3000"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
}

func TestRequestID_IsPropagated(t *testing.T) {
	r := newTestRouter(t, &mockGenerator{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Header().Get(HeaderRequestID))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, &mockGenerator{}, nil)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "imagegen_http_requests_total")
}

// コントローラから実際にサービスを呼んで、エラー文言がそのまま表示されることを確認するのだ。
func TestControllerAgainstServer(t *testing.T) {
	gen := &mockGenerator{}
	srv := httptest.NewServer(newTestRouter(t, gen, nil))
	defer srv.Close()

	var generated, failed []string
	c, err := controller.New(srv.URL+"/generate_image/",
		controller.WithOnGenerate(func(url string) { generated = append(generated, url) }),
		controller.WithOnError(func(msg string) { failed = append(failed, msg) }),
	)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := c.Submit(ctx, domain.GenerationRequest{Subject: "A serene mountain landscape", Style: "watercolor"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/images/a.png", url)
	assert.Equal(t, "A serene mountain landscape. Style: watercolor", gen.lastRequest().Prompt)
	require.NotNil(t, gen.lastRequest().CfgScale)
	assert.Equal(t, domain.DefaultCfgScale, *gen.lastRequest().CfgScale)

	gen.setErr(&service.GenerationError{Err: errors.New("backend down")})
	_, err = c.Submit(ctx, domain.GenerationRequest{Subject: "A serene mountain landscape"})
	require.Error(t, err)
	assert.Equal(t, controller.State{Phase: controller.PhaseError, Message: "Image generation failed: backend down"}, c.State())

	assert.Equal(t, []string{url}, generated)
	assert.Equal(t, []string{"Image generation failed: backend down"}, failed)
}
