package controller

import "fmt"

// Phase はコントローラの状態種別です。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText は JSON 出力で文字列表現を使うためのものです。
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State はある時点の UI 状態です。ImageURL は Success、Message は Error のときだけ値を持ちます。
type State struct {
	Phase    Phase  `json:"phase"`
	ImageURL string `json:"image_url,omitempty"`
	Message  string `json:"error,omitempty"`
}

func idleState() State { return State{Phase: PhaseIdle} }

func loadingState() State { return State{Phase: PhaseLoading} }

func successState(url string) State { return State{Phase: PhaseSuccess, ImageURL: url} }

func errorState(msg string) State { return State{Phase: PhaseError, Message: msg} }

// Loading は生成中かどうかを返します。
func (s State) Loading() bool { return s.Phase == PhaseLoading }
