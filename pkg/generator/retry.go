package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shouni/netarmor/retry"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

const (
	// DefaultMaxRetries は初回を除いた再試行回数です。初回と合わせて3回試行します。
	DefaultMaxRetries uint64 = 2
	// DefaultRetryInterval は最初の待機時間です。以降は指数的に伸びます。
	DefaultRetryInterval = time.Second
	// DefaultMaxInterval は待機時間の上限です。
	DefaultMaxInterval = 8 * time.Second
)

// RetryingGenerator は ImageGenerator を指数バックオフ付きの再試行で包むデコレーターです。
type RetryingGenerator struct {
	next ImageGenerator
	cfg  retry.Config
}

// NewRetryingGenerator は RetryingGenerator を初期化します。
func NewRetryingGenerator(next ImageGenerator, maxRetries uint64, interval time.Duration) (*RetryingGenerator, error) {
	if next == nil {
		return nil, fmt.Errorf("next (ImageGenerator) is required")
	}
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	maxInterval := DefaultMaxInterval
	if interval > maxInterval {
		maxInterval = interval
	}
	return &RetryingGenerator{
		next: next,
		cfg: retry.Config{
			MaxRetries:      maxRetries,
			InitialInterval: interval,
			MaxInterval:     maxInterval,
		},
	}, nil
}

// Generate は成功するか再試行回数を使い切るまで生成を繰り返します。
func (r *RetryingGenerator) Generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageResponse, error) {
	var out *domain.ImageResponse
	op := func() error {
		resp, err := r.next.Generate(ctx, req)
		if err != nil {
			return err
		}
		out = resp
		return nil
	}

	if err := retry.Do(ctx, r.cfg, "画像生成", op, shouldRetry); err != nil {
		return nil, err
	}
	return out, nil
}

// shouldRetry はキャンセルと安全性フィルタ以外を再試行対象とします。
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !errors.Is(err, ErrContentFiltered)
}
