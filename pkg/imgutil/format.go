package imgutil

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format は画像データの Content-Type と拡張子（ドット付き）です。
type Format struct {
	ContentType string
	Extension   string
}

// DetectFormat は中身から画像形式を判定します。
// 中身が画像と判定できなければ declared（バックエンドの申告値）を使います。
func DetectFormat(data []byte, declared string) Format {
	m := mimetype.Detect(data)
	if !strings.HasPrefix(m.String(), "image/") && declared != "" {
		if d := mimetype.Lookup(declared); d != nil {
			m = d
		}
	}
	return Format{ContentType: m.String(), Extension: m.Extension()}
}
