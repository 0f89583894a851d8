package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"

	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/imgutil"
)

// DefaultSignedURLTTL は署名付き URL の既定の有効期間です。
const DefaultSignedURLTTL = 7 * 24 * time.Hour

// StoreConfig は画像の保存先と公開 URL の組み立て方です。
type StoreConfig struct {
	// BaseURI はローカルディレクトリ、gs://bucket/prefix、s3://bucket/prefix のいずれかです。
	BaseURI string
	// PublicBaseURL があれば <PublicBaseURL>/<name> を公開 URL とします。
	PublicBaseURL string
	SignedURLTTL  time.Duration
}

// ImageStore は go-remote-io を介して生成画像を保存し、参照用 URL を払い出します。
type ImageStore struct {
	writer remoteio.OutputWriter
	reader remoteio.InputReader
	signer remoteio.URLSigner
	closer io.Closer
	cfg    StoreConfig
}

// NewImageStore は依存関係を注入して ImageStore を初期化します。signer は nil を許容します。
func NewImageStore(writer remoteio.OutputWriter, reader remoteio.InputReader, signer remoteio.URLSigner, cfg StoreConfig) (*ImageStore, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if strings.TrimSpace(cfg.BaseURI) == "" {
		return nil, fmt.Errorf("base URI is required")
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = DefaultSignedURLTTL
	}
	if cfg.PublicBaseURL == "" && (!remoteio.IsRemoteURI(cfg.BaseURI) || signer == nil) {
		return nil, fmt.Errorf("public base URL is required unless a remote store can sign URLs")
	}
	return &ImageStore{writer: writer, reader: reader, signer: signer, cfg: cfg}, nil
}

// OpenImageStore は BaseURI のスキームに応じて GCS / S3 / ローカルの実装を組み立てます。
func OpenImageStore(ctx context.Context, cfg StoreConfig) (*ImageStore, error) {
	var factory remoteio.IOFactory
	var err error
	switch {
	case remoteio.IsGCSURI(cfg.BaseURI):
		factory, err = gcsfactory.New(ctx)
	case remoteio.IsS3URI(cfg.BaseURI):
		factory, err = s3factory.New(ctx)
	default:
		return NewImageStore(remoteio.NewUniversalIOWriter(nil, nil), remoteio.NewUniversalInputReader(nil, nil), nil, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("ストレージクライアントの初期化に失敗しました: %w", err)
	}

	writer, err := factory.OutputWriter()
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	reader, err := factory.InputReader()
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	signer, err := factory.URLSigner()
	if err != nil {
		// 公開 URL で代替できるなら署名なしで続行する
		slog.WarnContext(ctx, "URL 署名機能を利用できません", "error", err)
		signer = nil
	}

	store, err := NewImageStore(writer, reader, signer, cfg)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	store.closer = factory
	return store, nil
}

// Remote は保存先がクラウドストレージかどうかを返します。
func (s *ImageStore) Remote() bool {
	return remoteio.IsRemoteURI(s.cfg.BaseURI)
}

// Save は画像を name で保存し、参照情報を返します。
func (s *ImageStore) Save(ctx context.Context, name string, data []byte, contentType string) (*domain.StoredImage, error) {
	if err := validateObjectName(name); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = imgutil.DetectFormat(data, "").ContentType
	}

	uri := s.objectURI(name)
	if err := s.writer.Write(ctx, uri, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("画像の保存に失敗しました (%s): %w", uri, err)
	}

	publicURL, err := s.URLFor(ctx, name)
	if err != nil {
		return nil, err
	}
	return &domain.StoredImage{Name: name, URI: uri, URL: publicURL, MimeType: contentType}, nil
}

// URLFor は保存済みオブジェクトの参照用 URL を返します。
func (s *ImageStore) URLFor(ctx context.Context, name string) (string, error) {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + url.PathEscape(name), nil
	}
	signed, err := s.signer.GenerateSignedURL(ctx, s.objectURI(name), http.MethodGet, s.cfg.SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("署名付き URL の生成に失敗しました: %w", err)
	}
	return signed, nil
}

// Open は保存済みの画像を読み出します。
func (s *ImageStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateObjectName(name); err != nil {
		return nil, err
	}
	return s.reader.Open(ctx, s.objectURI(name))
}

// Close はクラウドストレージのクライアントを解放します。
func (s *ImageStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *ImageStore) objectURI(name string) string {
	if s.Remote() {
		return strings.TrimRight(s.cfg.BaseURI, "/") + "/" + name
	}
	return filepath.Join(s.cfg.BaseURI, name)
}

func validateObjectName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid object name: %q", name)
	}
	return nil
}
