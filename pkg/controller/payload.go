package controller

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

// Form field names shared with the generation service.
const (
	FieldSubject        = "subject"
	FieldStyle          = "style"
	FieldContext        = "context"
	FieldNegativePrompt = "negative_prompt"
	FieldSeed           = "seed"
	FieldCfgScale       = "cfg_scale"
)

// buildPayload は multipart/form-data の本文と Content-Type を返します。
// subject と cfg_scale は常に、その他は値があるときだけ含めます。
func buildPayload(req domain.GenerationRequest) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	fields := []struct {
		name, value string
		always      bool
	}{
		{FieldSubject, req.Subject, true},
		{FieldStyle, req.Style, false},
		{FieldContext, req.Context, false},
		{FieldNegativePrompt, req.NegativePrompt, false},
	}
	for _, f := range fields {
		if f.value == "" && !f.always {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("フィールド %s の書き込みに失敗しました: %w", f.name, err)
		}
	}

	if req.Seed != nil {
		if err := w.WriteField(FieldSeed, strconv.FormatInt(*req.Seed, 10)); err != nil {
			return nil, "", fmt.Errorf("フィールド %s の書き込みに失敗しました: %w", FieldSeed, err)
		}
	}
	scale := strconv.FormatFloat(req.EffectiveCfgScale(), 'f', -1, 64)
	if err := w.WriteField(FieldCfgScale, scale); err != nil {
		return nil, "", fmt.Errorf("フィールド %s の書き込みに失敗しました: %w", FieldCfgScale, err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart 本文の確定に失敗しました: %w", err)
	}
	return body, w.FormDataContentType(), nil
}
