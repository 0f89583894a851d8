package showcase

import (
	"html/template"
	"regexp"
	"sort"
	"strings"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

var (
	safeLengthPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]+(px|%|rem|em|vw|vh)?$`)
	safeValuePattern  = regexp.MustCompile(`^[#0-9a-zA-Z .%,()-]+$`)
	safePropPattern   = regexp.MustCompile(`^[a-z-]+$`)
)

// cssLength は安全な長さだけを CSS 表現にし、それ以外は def を使います。
func cssLength(l domain.Length, def domain.Length) string {
	v := l.CSS()
	if v == "" || !safeLengthPattern.MatchString(v) {
		return def.CSS()
	}
	return v
}

// containerCSS はプレビュー枠の style 属性を組み立てます。
func containerCSS(d domain.DisplayConfig) template.CSS {
	def := domain.DefaultDisplayConfig()
	var b strings.Builder
	b.WriteString("width: " + cssLength(d.Width, def.Width) + ";")
	b.WriteString(" height: " + cssLength(d.Height, def.Height) + ";")
	b.WriteString(" border-radius: " + cssLength(d.CornerRadius, def.CornerRadius) + ";")

	keys := make([]string, 0, len(d.ContainerStyle))
	for k := range d.ContainerStyle {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := d.ContainerStyle[k]
		if !safePropPattern.MatchString(k) || !safeValuePattern.MatchString(v) {
			continue
		}
		b.WriteString(" " + k + ": " + v + ";")
	}
	return template.CSS(b.String())
}

// radiusCSS は角丸だけを指定する style 属性です。
func radiusCSS(d domain.DisplayConfig) template.CSS {
	def := domain.DefaultDisplayConfig()
	return template.CSS("border-radius: " + cssLength(d.CornerRadius, def.CornerRadius) + ";")
}

// imageCSS は画像をプレビュー枠いっぱいに切り抜いて表示する style 属性です。
func imageCSS(d domain.DisplayConfig, objectFit string) template.CSS {
	def := domain.DefaultDisplayConfig()
	return template.CSS("width: 100%; height: 100%; object-fit: " + objectFit +
		"; border-radius: " + cssLength(d.CornerRadius, def.CornerRadius) + ";")
}

var templateFuncs = template.FuncMap{
	"containerCSS": containerCSS,
	"radiusCSS":    radiusCSS,
	"imageCSS":     imageCSS,
}
