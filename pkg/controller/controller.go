package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

// DefaultEndpoint は生成サービスの既定エンドポイントです。
const DefaultEndpoint = "http://localhost:8000/generate_image/"

// Controller は生成リクエスト1件ごとのライフサイクルと UI 状態を管理します。
// 送信ごとに連番を払い出し、最新の送信以外の結果は状態にもコールバックにも反映しません。
type Controller struct {
	endpoint   string
	doer       httpkit.Doer
	timeout    time.Duration
	onGenerate func(imageURL string)
	onError    func(message string)

	mu    sync.Mutex
	state State
	seq   uint64
}

// Option は Controller の設定を変更します。
type Option func(*Controller)

// WithDoer は HTTP 送信に使うクライアントを差し替えます。
func WithDoer(d httpkit.Doer) Option {
	return func(c *Controller) { c.doer = d }
}

// WithTimeout は1回の送信にかける上限時間を設定します。0 は無制限です。
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithOnGenerate は生成成功時に画像 URL を受け取るコールバックを設定します。
func WithOnGenerate(fn func(imageURL string)) Option {
	return func(c *Controller) { c.onGenerate = fn }
}

// WithOnError は失敗時に文言を受け取るコールバックを設定します。
func WithOnError(fn func(message string)) Option {
	return func(c *Controller) { c.onError = fn }
}

// New は Controller を初期化します。
func New(endpoint string, opts ...Option) (*Controller, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	c := &Controller{
		endpoint: endpoint,
		state:    idleState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative: %s", c.timeout)
	}
	if c.doer == nil {
		// リトライもタイムアウトもかけない素の送信にする
		c.doer = httpkit.New(0, httpkit.WithHTTPClient(&http.Client{}), httpkit.WithSkipNetworkValidation(true))
	}
	return c, nil
}

// State は現在の状態のスナップショットを返します。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Endpoint は送信先 URL を返します。
func (c *Controller) Endpoint() string { return c.endpoint }

// Submit は1件の生成リクエストを送信し、完了までブロックします。
// 非同期に扱いたい呼び出し側は goroutine で呼び出してください。
// 後続の送信に追い越された場合は ErrSuperseded を返し、状態は変更しません。
func (c *Controller) Submit(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if !req.HasSubject() {
		return "", c.reject(ctx, domain.MsgSubjectRequired)
	}
	if err := domain.ValidateSeed(req.Seed); err != nil {
		return "", c.reject(ctx, err.Error())
	}
	if err := domain.ValidateCfgScale(req.CfgScale); err != nil {
		return "", c.reject(ctx, err.Error())
	}

	seq := c.begin()
	slog.InfoContext(ctx, "画像生成リクエストを送信します", "endpoint", c.endpoint, "seq", seq)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url, err := c.send(ctx, req)
	return c.complete(ctx, seq, url, err)
}

// reject は通信を行わずにエラー状態へ遷移させます。
func (c *Controller) reject(ctx context.Context, msg string) error {
	c.mu.Lock()
	c.seq++
	c.state = errorState(msg)
	onError := c.onError
	c.mu.Unlock()

	slog.WarnContext(ctx, "入力検証に失敗しました", "reason", msg)
	if onError != nil {
		onError(msg)
	}
	return &ValidationError{Message: msg}
}

func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.state = loadingState()
	return c.seq
}

// complete は送信結果を状態へ反映し、対応するコールバックを1回だけ呼び出します。
func (c *Controller) complete(ctx context.Context, seq uint64, url string, err error) (string, error) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		slog.InfoContext(ctx, "古いレスポンスを破棄しました", "seq", seq)
		return "", ErrSuperseded
	}
	if err != nil {
		msg := Message(err)
		c.state = errorState(msg)
		onError := c.onError
		c.mu.Unlock()

		slog.ErrorContext(ctx, "画像生成に失敗しました", "seq", seq, "error", err)
		if onError != nil {
			onError(msg)
		}
		return "", err
	}
	c.state = successState(url)
	onGenerate := c.onGenerate
	c.mu.Unlock()

	slog.InfoContext(ctx, "画像生成に成功しました", "seq", seq, "image_url", url)
	if onGenerate != nil {
		onGenerate(url)
	}
	return url, nil
}

// send はリトライなしで1回だけ POST し、レスポンスを解釈します。
func (c *Controller) send(ctx context.Context, req domain.GenerationRequest) (string, error) {
	body, contentType, err := buildPayload(req)
	if err != nil {
		return "", newTransportError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", newTransportError(err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return "", newTransportError(err)
	}
	raw, err := httpkit.HandleLimitedResponse(resp, httpkit.MaxResponseBodySize)
	if err != nil {
		return "", newTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: detailOrDefault(raw)}
	}

	var result domain.GenerationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", newTransportError(err)
	}
	if result.ImageURL == "" {
		return "", newTransportError(errors.New(domain.MsgGenerateFailed))
	}
	return result.ImageURL, nil
}

// detailOrDefault はエラーボディの detail を取り出し、無ければ汎用文言を返します。
func detailOrDefault(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.MsgGenerateFailed
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	return domain.MsgGenerateFailed
}
