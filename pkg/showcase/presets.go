package showcase

// Preset は入力欄をまとめて書き換えるデモ用のシナリオです。
type Preset struct {
	Key            string
	Name           string
	Fields         Fields
	ContainerStyle map[string]string
}

// PresetKeys は表示順に並べたプリセットのキーです。
var PresetKeys = []string{"basic", "medical", "ecommerce", "gaming"}

// presets は参照専用です。外へ渡すときは clonePreset を通します。
var presets = map[string]Preset{
	"basic": {
		Key:  "basic",
		Name: "Basic Usage",
		Fields: Fields{
			Subject:      "A serene mountain landscape",
			Width:        "100%",
			Height:       "300",
			CornerRadius: "8",
		},
	},
	"medical": {
		Key:  "medical",
		Name: "Medical App Icon",
		Fields: Fields{
			Subject:        "A medical cross symbol",
			Style:          "minimalist line art",
			Context:        "healthcare app with blue theme",
			NegativePrompt: "complex, detailed, photorealistic",
			Width:          "200",
			Height:         "200",
			CornerRadius:   "16",
		},
		ContainerStyle: map[string]string{"background-color": "#f0f9ff", "padding": "20px"},
	},
	"ecommerce": {
		Key:  "ecommerce",
		Name: "E-commerce Product",
		Fields: Fields{
			Subject:        "A sleek modern watch",
			Style:          "product photography",
			Context:        "luxury e-commerce website",
			NegativePrompt: "blurry, low quality, distorted",
			Width:          "100%",
			Height:         "400",
			CornerRadius:   "8",
		},
	},
	"gaming": {
		Key:  "gaming",
		Name: "Game Asset",
		Fields: Fields{
			Subject:        "A magical glowing sword",
			Style:          "digital art, fantasy style",
			Context:        "dark theme gaming interface",
			NegativePrompt: "realistic, photographic",
			Width:          "300",
			Height:         "400",
			CornerRadius:   "0",
		},
		ContainerStyle: map[string]string{"background-color": "#1a1a1a", "padding": "16px"},
	},
}

// LookupPreset はキーに対応するプリセットのコピーを返します。
func LookupPreset(key string) (Preset, bool) {
	p, ok := presets[key]
	if !ok {
		return Preset{}, false
	}
	return clonePreset(p), true
}

// Presets は表示順のプリセット一覧を返します。
func Presets() []Preset {
	out := make([]Preset, 0, len(PresetKeys))
	for _, k := range PresetKeys {
		out = append(out, clonePreset(presets[k]))
	}
	return out
}

func clonePreset(p Preset) Preset {
	if p.ContainerStyle != nil {
		style := make(map[string]string, len(p.ContainerStyle))
		for k, v := range p.ContainerStyle {
			style[k] = v
		}
		p.ContainerStyle = style
	}
	return p
}
