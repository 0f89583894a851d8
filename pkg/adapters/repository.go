package adapters

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound は該当するレコードが無いことを示します。
var ErrNotFound = errors.New("not found")

// ImageRepository は prompt ハッシュと保存済みオブジェクト名の対応を永続化します。
// 署名付き URL は期限があるため記録せず、参照時に ImageStore.URLFor で解決します。
type ImageRepository interface {
	FindByPromptHash(ctx context.Context, promptHash string) (string, error)
	Save(ctx context.Context, promptHash, objectName string) error
}

// MemoryRepository はプロセス内に保持する ImageRepository です。
type MemoryRepository struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMemoryRepository は空の MemoryRepository を作成します。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{names: make(map[string]string)}
}

func (r *MemoryRepository) FindByPromptHash(ctx context.Context, promptHash string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[promptHash]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func (r *MemoryRepository) Save(ctx context.Context, promptHash, objectName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[promptHash] = objectName
	return nil
}
