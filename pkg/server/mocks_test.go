package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/service"
)

// mockGenerator は最後に受け取った要求を記録するのだ。
type mockGenerator struct {
	mu   sync.Mutex
	last domain.ImageGenerationRequest
	out  *service.Outcome
	err  error
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*service.Outcome, error) {
	m.mu.Lock()
	m.last = req
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if m.out != nil {
		return m.out, nil
	}
	return &service.Outcome{ImageURL: "http://localhost:8000/images/a.png", Source: service.SourceGenerated}, nil
}

func (m *mockGenerator) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockGenerator) lastRequest() domain.ImageGenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

type mapReader map[string][]byte

func (r mapReader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := r[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
