package controller

import (
	"errors"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

// ErrSuperseded は、後続の送信によって結果が破棄されたことを示します。
var ErrSuperseded = errors.New("submission superseded by a newer request")

// ValidationError は送信前の入力検証で失敗したことを表します。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ServiceError は生成サービスが 2xx 以外を返したことを表します。
// Message はレスポンスの detail、無ければ汎用文言です。
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

// TransportError は通信失敗や不正なレスポンスボディを表します。
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(err error) *TransportError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = domain.MsgGenerateFailed
	}
	return &TransportError{Message: msg, Err: err}
}

// Message は UI に表示するための文言を返します。
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	var se *ServiceError
	var te *TransportError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &se):
		return se.Message
	case errors.As(err, &te):
		return te.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return domain.MsgGenerateFailed
}
