package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// memWriter は remoteio.OutputWriter のテスト用モックなのだ。
type memWriter struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemWriter() *memWriter {
	return &memWriter{objects: map[string][]byte{}, types: map[string]string{}}
}

func (w *memWriter) Write(ctx context.Context, uri string, r io.Reader, contentType string) error {
	if w.err != nil {
		return w.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.objects[uri] = data
	w.types[uri] = contentType
	return nil
}

// memReader は memWriter の内容を読み出すのだ。
type memReader struct{ w *memWriter }

func (r *memReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	data, ok := r.w.objects[uri]
	if !ok {
		return nil, fmt.Errorf("object %s not found", uri)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (r *memReader) List(ctx context.Context, path string, fn func(string) error) error {
	return nil
}

// fakeSigner は URI をそのまま埋め込んだ URL を返すのだ。
type fakeSigner struct {
	lastTTL time.Duration
}

func (s *fakeSigner) GenerateSignedURL(ctx context.Context, uri, method string, expires time.Duration) (string, error) {
	s.lastTTL = expires
	return "https://signed.example.com/?object=" + uri + "&method=" + method, nil
}
