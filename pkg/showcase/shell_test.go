package showcase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/image-generator-kit/pkg/controller"
	"github.com/shouni/image-generator-kit/pkg/domain"
)

func TestNewShell(t *testing.T) {
	t.Run("コントローラが無いとエラーになるのだ", func(t *testing.T) {
		_, err := NewShell(nil)
		assert.Error(t, err)
	})

	t.Run("最初は basic プリセットで待機状態なのだ", func(t *testing.T) {
		s := newTestShell(t, &fakeDoer{})
		assert.Equal(t, "basic", s.Preset())
		assert.Equal(t, "A serene mountain landscape", s.Fields().Subject)
		assert.Equal(t, controller.PhaseIdle, s.State().Phase)
	})
}

func TestShell_ApplyPreset(t *testing.T) {
	s := newTestShell(t, &fakeDoer{})

	t.Run("すべての入力欄が置き換わるのだ", func(t *testing.T) {
		require.NoError(t, s.ApplyPreset("medical"))
		assert.Equal(t, Fields{
			Subject:        "A medical cross symbol",
			Style:          "minimalist line art",
			Context:        "healthcare app with blue theme",
			NegativePrompt: "complex, detailed, photorealistic",
			Width:          "200",
			Height:         "200",
			CornerRadius:   "16",
		}, s.Fields())

		d := s.DisplayConfig()
		assert.Equal(t, "200px", d.Width.CSS())
		assert.Equal(t, "16px", d.CornerRadius.CSS())
		assert.Equal(t, "#f0f9ff", d.ContainerStyle["background-color"])
	})

	t.Run("前のプリセットの値は残らないのだ", func(t *testing.T) {
		require.NoError(t, s.ApplyPreset("basic"))
		f := s.Fields()
		assert.Empty(t, f.Style)
		assert.Empty(t, f.Context)
		assert.Empty(t, f.NegativePrompt)
		assert.Empty(t, s.DisplayConfig().ContainerStyle)
	})

	t.Run("gaming の角丸は 0 なのだ", func(t *testing.T) {
		require.NoError(t, s.ApplyPreset("gaming"))
		assert.Equal(t, "0px", s.DisplayConfig().CornerRadius.CSS())
	})

	t.Run("未知のキーは何も変えないのだ", func(t *testing.T) {
		before := s.Fields()
		assert.Error(t, s.ApplyPreset("unknown"))
		assert.Equal(t, before, s.Fields())
		assert.Equal(t, "gaming", s.Preset())
	})
}

func TestShell_DisplayConfigDefaults(t *testing.T) {
	s := newTestShell(t, &fakeDoer{})
	s.SetFields(Fields{Subject: "x"})

	d := s.DisplayConfig()
	def := domain.DefaultDisplayConfig()
	assert.Equal(t, def.Width, d.Width)
	assert.Equal(t, def.Height, d.Height)
	assert.Equal(t, def.CornerRadius, d.CornerRadius)
}

func TestShell_DisplayConfigDoesNotLeakPresetStyle(t *testing.T) {
	s := newTestShell(t, &fakeDoer{})
	require.NoError(t, s.ApplyPreset("gaming"))

	d := s.DisplayConfig()
	d.ContainerStyle["background-color"] = "red"

	assert.Equal(t, "#1a1a1a", s.DisplayConfig().ContainerStyle["background-color"])
	p, ok := LookupPreset("gaming")
	require.True(t, ok)
	assert.Equal(t, "#1a1a1a", p.ContainerStyle["background-color"])
}

func TestShell_Request(t *testing.T) {
	t.Run("入力された値を加工せずに渡すのだ", func(t *testing.T) {
		s := newTestShell(t, &fakeDoer{})
		s.SetFields(Fields{Subject: " A cat ", Style: "  ", Context: " indoors ", NegativePrompt: ""})

		req := s.Request()
		assert.Equal(t, " A cat ", req.Subject)
		assert.Equal(t, "  ", req.Style)
		assert.Equal(t, " indoors ", req.Context)
		assert.Empty(t, req.NegativePrompt)
		assert.Nil(t, req.Seed)
		assert.Nil(t, req.CfgScale)
	})
}

func TestShell_Generate(t *testing.T) {
	t.Run("成功すると画像が表示されるのだ", func(t *testing.T) {
		doer := &fakeDoer{}
		s := newTestShell(t, doer)

		url, err := s.Generate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/generated.png", url)
		assert.Equal(t, []string{"A serene mountain landscape"}, doer.sent())

		snap := s.Snapshot()
		assert.Equal(t, controller.PhaseSuccess, snap.State.Phase)
		assert.True(t, snap.View.ShowImage)
		assert.Equal(t, url, snap.View.ImageURL)
	})

	t.Run("subject が空だと送信しないのだ", func(t *testing.T) {
		doer := &fakeDoer{}
		s := newTestShell(t, doer)
		s.SetFields(Fields{Subject: "   "})

		_, err := s.Generate(context.Background())
		require.Error(t, err)
		assert.Empty(t, doer.sent())
		assert.Equal(t, domain.MsgSubjectRequired, s.Snapshot().View.ErrorMessage)
	})

	t.Run("サービスの detail が表示されるのだ", func(t *testing.T) {
		doer := &fakeDoer{status: 500, body: `{"detail":"Image generation failed: quota"}`}
		s := newTestShell(t, doer)

		_, err := s.Generate(context.Background())
		require.Error(t, err)
		snap := s.Snapshot()
		assert.Equal(t, controller.PhaseError, snap.State.Phase)
		assert.Equal(t, "Image generation failed: quota", snap.View.ErrorMessage)
		assert.False(t, snap.View.ShowImage)
	})
}
