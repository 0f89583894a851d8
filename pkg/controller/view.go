package controller

const (
	PlaceholderText = "Image preview will appear here"
	LoadingText     = "Generating..."
	ButtonText      = "Generate Image"
	ImageAltText    = "Generated image"
	ImageObjectFit  = "cover"
)

// View は State から導かれる描画内容です。
type View struct {
	ShowImage      bool   `json:"show_image"`
	ImageURL       string `json:"image_url,omitempty"`
	ImageAlt       string `json:"image_alt,omitempty"`
	ObjectFit      string `json:"object_fit,omitempty"`
	Placeholder    string `json:"placeholder,omitempty"`
	ButtonLabel    string `json:"button_label"`
	ButtonDisabled bool   `json:"button_disabled"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// View は描画規約に従って表示内容を組み立てます。
func (s State) View() View {
	v := View{ButtonLabel: ButtonText}
	switch s.Phase {
	case PhaseSuccess:
		v.ShowImage = true
		v.ImageURL = s.ImageURL
		v.ImageAlt = ImageAltText
		v.ObjectFit = ImageObjectFit
	case PhaseLoading:
		v.Placeholder = LoadingText
		v.ButtonLabel = LoadingText
		v.ButtonDisabled = true
	case PhaseError:
		v.Placeholder = PlaceholderText
		v.ErrorMessage = s.Message
	default:
		v.Placeholder = PlaceholderText
	}
	return v
}
