package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxSeed はシードとして受け付ける最大値です。
	MaxSeed int64 = 4294967294
	// DefaultCfgScale はプロンプト追従度の既定値です。
	DefaultCfgScale = 7.0
	// DefaultAspectRatio は生成画像の既定アスペクト比です。
	DefaultAspectRatio = "1:1"
)

const (
	// MsgSubjectRequired は subject が空のときに表示する文言です。
	MsgSubjectRequired = "Please provide a subject description for the image"
	// MsgGenerateFailed はサービスが理由を返さなかったときの汎用文言です。
	MsgGenerateFailed = "Failed to generate image"
)

// GenerationRequest は UI からサービスへ送る生成パラメータです。
type GenerationRequest struct {
	Subject        string   `json:"subject"`
	Style          string   `json:"style,omitempty"`
	Context        string   `json:"context,omitempty"`
	NegativePrompt string   `json:"negative_prompt,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	CfgScale       *float64 `json:"cfg_scale,omitempty"`
}

// GenerationResult は生成サービスの成功レスポンスです。
type GenerationResult struct {
	ImageURL string `json:"image_url"`
}

// ErrorDetail は生成サービスの失敗レスポンスです。
type ErrorDetail struct {
	Detail string `json:"detail"`
}

// HasSubject は subject が空白以外の文字を含むかを返します。
func (r GenerationRequest) HasSubject() bool {
	return strings.TrimSpace(r.Subject) != ""
}

// EffectiveCfgScale は未指定なら既定値を返します。
func (r GenerationRequest) EffectiveCfgScale() float64 {
	if r.CfgScale == nil {
		return DefaultCfgScale
	}
	return *r.CfgScale
}

// Validate は送信前に満たすべき条件を検証します。
func (r GenerationRequest) Validate() error {
	if !r.HasSubject() {
		return errors.New(MsgSubjectRequired)
	}
	if err := ValidateSeed(r.Seed); err != nil {
		return err
	}
	return ValidateCfgScale(r.CfgScale)
}

// ValidateSeed は seed が [0, MaxSeed] に収まるかを検証します。nil は許容します。
func ValidateSeed(seed *int64) error {
	if seed == nil {
		return nil
	}
	if *seed < 0 || *seed > MaxSeed {
		return fmt.Errorf("Seed must be between 0 and %d", MaxSeed)
	}
	return nil
}

// ValidateCfgScale は cfg_scale が正の値であるかを検証します。nil は許容します。
func ValidateCfgScale(scale *float64) error {
	if scale == nil {
		return nil
	}
	if *scale <= 0 {
		return errors.New("cfg_scale must be greater than 0")
	}
	return nil
}

// ComposePrompt は subject に style と context を連結してバックエンド用のプロンプトを作ります。
func (r GenerationRequest) ComposePrompt() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Subject))
	if s := strings.TrimSpace(r.Style); s != "" {
		b.WriteString(". Style: ")
		b.WriteString(s)
	}
	if c := strings.TrimSpace(r.Context); c != "" {
		b.WriteString(". Context: ")
		b.WriteString(c)
	}
	return b.String()
}

// ToImageRequest はバックエンド向けの生成要求へ変換します。
func (r GenerationRequest) ToImageRequest() ImageGenerationRequest {
	scale := r.EffectiveCfgScale()
	return ImageGenerationRequest{
		Prompt:         r.ComposePrompt(),
		NegativePrompt: strings.TrimSpace(r.NegativePrompt),
		AspectRatio:    DefaultAspectRatio,
		Seed:           r.Seed,
		CfgScale:       &scale,
	}
}
