package domain

// ImageGenerationRequest は生成サービスがバックエンドへ渡す単一の画像生成要求です。
// Prompt は subject / style / context を合成した最終プロンプトです。
type ImageGenerationRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	Seed           *int64
	CfgScale       *float64
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
	UsedSeed int64 // 戻り値は情報欠落を防ぐため int64
}

// StoredImage は保存済み画像の参照情報です。
type StoredImage struct {
	Name     string
	URI      string
	URL      string
	MimeType string
}
