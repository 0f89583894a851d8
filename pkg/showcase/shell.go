package showcase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/shouni/image-generator-kit/pkg/controller"
	"github.com/shouni/image-generator-kit/pkg/domain"
)

// Fields はページ上の入力欄の値です。入力されたままの文字列を保持します。
type Fields struct {
	Subject        string `json:"subject" form:"subject"`
	Style          string `json:"style" form:"style"`
	Context        string `json:"context" form:"context"`
	NegativePrompt string `json:"negative_prompt" form:"negative_prompt"`
	Width          string `json:"width" form:"width"`
	Height         string `json:"height" form:"height"`
	CornerRadius   string `json:"corner_radius" form:"corner_radius"`
}

// Snapshot はある時点のページ全体の状態です。
type Snapshot struct {
	Preset  string               `json:"preset"`
	Fields  Fields               `json:"fields"`
	Display domain.DisplayConfig `json:"display"`
	State   controller.State     `json:"state"`
	View    controller.View      `json:"view"`
}

// Shell は入力欄とプリセット、ひとつの Controller を束ねるデモページの状態です。
type Shell struct {
	ctrl *controller.Controller

	mu             sync.RWMutex
	preset         string
	fields         Fields
	containerStyle map[string]string
}

// NewShell は basic プリセットを選んだ状態で Shell を作ります。
func NewShell(ctrl *controller.Controller) (*Shell, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("controller is required")
	}
	s := &Shell{ctrl: ctrl}
	if err := s.ApplyPreset(PresetKeys[0]); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyPreset はすべての入力欄をプリセットの値で一度に置き換えます。
func (s *Shell) ApplyPreset(key string) error {
	p, ok := LookupPreset(key)
	if !ok {
		return fmt.Errorf("unknown preset: %q", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = p.Key
	s.fields = p.Fields
	s.containerStyle = p.ContainerStyle
	return nil
}

// SetFields は入力欄を更新します。選択中のプリセットのコンテナスタイルは維持します。
func (s *Shell) SetFields(f Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = f
}

// Fields は入力欄の現在値を返します。
func (s *Shell) Fields() Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields
}

// Preset は選択中のプリセットのキーを返します。
func (s *Shell) Preset() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preset
}

// Request は入力欄の値をそのまま生成要求にします。空の任意項目は送信されません。
func (s *Shell) Request() domain.GenerationRequest {
	f := s.Fields()
	return domain.GenerationRequest{
		Subject:        f.Subject,
		Style:          f.Style,
		Context:        f.Context,
		NegativePrompt: f.NegativePrompt,
	}
}

// DisplayConfig は入力欄の寸法を表示設定に変換します。空欄は既定値になります。
func (s *Shell) DisplayConfig() domain.DisplayConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := domain.DisplayConfig{
		Width:        domain.ParseLength(s.fields.Width),
		Height:       domain.ParseLength(s.fields.Height),
		CornerRadius: domain.ParseLength(s.fields.CornerRadius),
	}
	if len(s.containerStyle) > 0 {
		d.ContainerStyle = maps.Clone(s.containerStyle)
	}
	return d.WithDefaults()
}

// Generate は現在の入力欄で1件送信し、完了まで待ちます。
func (s *Shell) Generate(ctx context.Context) (string, error) {
	return s.ctrl.Submit(ctx, s.Request())
}

// State はコントローラの状態を返します。
func (s *Shell) State() controller.State {
	return s.ctrl.State()
}

// Snapshot は描画に必要な値をまとめて返します。
func (s *Shell) Snapshot() Snapshot {
	st := s.ctrl.State()
	return Snapshot{
		Preset:  s.Preset(),
		Fields:  s.Fields(),
		Display: s.DisplayConfig(),
		State:   st,
		View:    st.View(),
	}
}

// LogGenerated は生成成功時のコールバックです。
func LogGenerated(url string) {
	slog.Info("Image generated", "image_url", url)
}

// LogError は失敗時のコールバックです。
func LogError(msg string) {
	slog.Error("Generation failed", "error", msg)
}
