package domain

import (
	"strconv"
	"strings"
)

// Length は CSS の長さ表現です。数値のみの値はピクセルとして扱います。
type Length string

// Px はピクセル値から Length を作ります。
func Px(n int) Length {
	return Length(strconv.Itoa(n))
}

// ParseLength は入力欄の文字列を Length に変換します。
func ParseLength(s string) Length {
	return Length(strings.TrimSpace(s))
}

// CSS はスタイル属性にそのまま埋め込める表現を返すのだ。
func (l Length) CSS() string {
	s := strings.TrimSpace(string(l))
	if s == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s + "px"
	}
	return s
}

// DisplayConfig はプレビュー枠の表示設定です。
type DisplayConfig struct {
	Width          Length            `json:"width"`
	Height         Length            `json:"height"`
	CornerRadius   Length            `json:"corner_radius"`
	ContainerStyle map[string]string `json:"container_style,omitempty"`
}

// GenerationConfig はコントローラとページが共有する既定値の組です。
type GenerationConfig struct {
	CfgScale     float64
	Seed         int64
	Width        Length
	Height       Length
	CornerRadius Length
}

// DefaultGenerationConfig は既定値を返します。値渡しなので呼び出し側の変更は共有されません。
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		CfgScale:     DefaultCfgScale,
		Seed:         0,
		Width:        "100%",
		Height:       Px(300),
		CornerRadius: Px(8),
	}
}

// DefaultDisplayConfig は既定値から表示設定を作ります。
func DefaultDisplayConfig() DisplayConfig {
	c := DefaultGenerationConfig()
	return DisplayConfig{
		Width:        c.Width,
		Height:       c.Height,
		CornerRadius: c.CornerRadius,
	}
}

// WithDefaults は空の項目を既定値で埋めたコピーを返します。
func (d DisplayConfig) WithDefaults() DisplayConfig {
	def := DefaultDisplayConfig()
	if strings.TrimSpace(string(d.Width)) == "" {
		d.Width = def.Width
	}
	if strings.TrimSpace(string(d.Height)) == "" {
		d.Height = def.Height
	}
	if strings.TrimSpace(string(d.CornerRadius)) == "" {
		d.CornerRadius = def.CornerRadius
	}
	return d
}
