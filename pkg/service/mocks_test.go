package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shouni/image-generator-kit/pkg/adapters"
	"github.com/shouni/image-generator-kit/pkg/domain"
)

type mockGenerator struct {
	calls atomic.Int32
	resp  *domain.ImageResponse
	err   error
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &domain.ImageResponse{Data: []byte("png"), MimeType: "image/png"}, nil
}

// mockStore はメモリに保存するのだ。signed なら URLFor のたびに異なる署名付き URL を返すのだ。
type mockStore struct {
	mu     sync.Mutex
	saved  map[string][]byte
	types  map[string]string
	err    error
	urlErr error
	signed bool
	signs  atomic.Int32
}

func newMockStore() *mockStore {
	return &mockStore{saved: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockStore) Save(ctx context.Context, name string, data []byte, contentType string) (*domain.StoredImage, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.saved[name] = data
	m.types[name] = contentType
	m.mu.Unlock()

	url, err := m.URLFor(ctx, name)
	if err != nil {
		return nil, err
	}
	return &domain.StoredImage{
		Name:     name,
		URI:      "mem://" + name,
		URL:      url,
		MimeType: contentType,
	}, nil
}

func (m *mockStore) URLFor(ctx context.Context, name string) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	if m.signed {
		return fmt.Sprintf("https://storage.example/%s?sig=%d", name, m.signs.Add(1)), nil
	}
	return "http://localhost:8000/images/" + name, nil
}

// failingRepo は参照や保存の失敗を再現するのだ。
type failingRepo struct {
	findErr error
	saveErr error
}

func (r *failingRepo) FindByPromptHash(ctx context.Context, hash string) (string, error) {
	if r.findErr != nil {
		return "", r.findErr
	}
	return "", adapters.ErrNotFound
}

func (r *failingRepo) Save(ctx context.Context, hash, name string) error { return r.saveErr }
