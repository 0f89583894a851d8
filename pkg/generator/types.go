package generator

import "errors"

const (
	// DefaultImagenModel は Imagen バックエンドの既定モデルです。
	DefaultImagenModel = "imagen-3.0-generate-001"
	// DefaultGeminiModel は Gemini バックエンドの既定モデルです。
	DefaultGeminiModel = "gemini-2.5-flash-image"
)

var (
	// ErrNoImage はレスポンスに画像が含まれていなかったことを示します。
	ErrNoImage = errors.New("no image data")
	// ErrContentFiltered は安全性フィルタで画像が除外されたことを示します。
	ErrContentFiltered = errors.New("image was filtered by safety settings")
)

// ImageOutput はレスポンス解析の内部結果です。
type ImageOutput struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}
