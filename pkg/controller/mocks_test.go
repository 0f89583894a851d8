package controller

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

// doerFunc は関数を httpkit.Doer として扱うためのテスト用アダプターなのだ。
type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// countingDoer は呼び出し回数を数えるのだ。
type countingDoer struct {
	calls atomic.Int32
	next  doerFunc
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	if d.next == nil {
		return jsonResponse(http.StatusOK, `{"image_url":"https://example.com/x.png"}`), nil
	}
	return d.next(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// recorder はコールバックの呼び出しを記録するのだ。
type recorder struct {
	generated atomic.Value
	errored   atomic.Value
	genCount  atomic.Int32
	errCount  atomic.Int32
}

func (r *recorder) options() []Option {
	return []Option{
		WithOnGenerate(func(url string) {
			r.genCount.Add(1)
			r.generated.Store(url)
		}),
		WithOnError(func(msg string) {
			r.errCount.Add(1)
			r.errored.Store(msg)
		}),
	}
}

func (r *recorder) lastGenerated() string {
	v, _ := r.generated.Load().(string)
	return v
}

func (r *recorder) lastError() string {
	v, _ := r.errored.Load().(string)
	return v
}
