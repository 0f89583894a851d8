package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"
	"github.com/spf13/cobra"

	"github.com/shouni/image-generator-kit/pkg/controller"
	"github.com/shouni/image-generator-kit/pkg/domain"
	"github.com/shouni/image-generator-kit/pkg/imgutil"
)

type generateFlags struct {
	endpoint       string
	subject        string
	style          string
	context        string
	negativePrompt string
	seed           int64
	cfgScale       float64
	output         string
}

var genFlags generateFlags

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Submit one generation request and optionally download the image",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := genFlags.endpoint
		if endpoint == "" {
			endpoint = cfg.GenerateEndpoint
		}
		ctrl, err := controller.New(endpoint, controller.WithTimeout(cfg.GenerateTimeout))
		if err != nil {
			return err
		}

		req := genFlags.request(cmd.Flags().Changed("seed"), cmd.Flags().Changed("cfg-scale"))
		imageURL, err := ctrl.Submit(cmd.Context(), req)
		if err != nil {
			return errors.New(controller.Message(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), imageURL)

		if genFlags.output == "" {
			return nil
		}
		client := newDownloadClient(endpoint, imageURL, cfg.GenerateTimeout)
		return downloadImage(cmd.Context(), client, imageURL, genFlags.output)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.endpoint, "endpoint", "", "generation endpoint (defaults to GENERATE_ENDPOINT)")
	f.StringVarP(&genFlags.subject, "subject", "s", "", "what to generate")
	f.StringVar(&genFlags.style, "style", "", "art style")
	f.StringVar(&genFlags.context, "context", "", "usage context")
	f.StringVar(&genFlags.negativePrompt, "negative-prompt", "", "things to avoid")
	f.Int64Var(&genFlags.seed, "seed", 0, "seed (0 to 4294967294)")
	f.Float64Var(&genFlags.cfgScale, "cfg-scale", domain.DefaultCfgScale, "guidance scale")
	f.StringVarP(&genFlags.output, "output", "o", "", "save the image to a local path, gs:// or s3:// URI")
}

// request はフラグから生成要求を作ります。seed と cfg-scale は指定されたときだけ送ります。
func (f generateFlags) request(seedSet, cfgSet bool) domain.GenerationRequest {
	req := domain.GenerationRequest{
		Subject:        f.subject,
		Style:          f.style,
		Context:        f.context,
		NegativePrompt: f.negativePrompt,
	}
	if seedSet {
		seed := f.seed
		req.Seed = &seed
	}
	if cfgSet {
		scale := f.cfgScale
		req.CfgScale = &scale
	}
	return req
}

type fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// newDownloadClient は画像取得用のクライアントを作ります。
// 画像が生成エンドポイントと同じホストにあるときは、ローカル開発向けにネットワーク検証を外します。
func newDownloadClient(endpoint, imageURL string, timeout time.Duration) fetcher {
	return httpkit.New(timeout, httpkit.WithSkipNetworkValidation(sameHost(endpoint, imageURL)))
}

// sameHost は2つの URL のホスト名が一致するかを返します。
func sameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Hostname() != "" && strings.EqualFold(ua.Hostname(), ub.Hostname())
}

// downloadImage は画像を取得して output に書き込みます。
func downloadImage(ctx context.Context, client fetcher, imageURL, output string) error {
	data, err := client.FetchBytes(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("画像のダウンロードに失敗しました: %w", err)
	}

	writer, closeFn, err := openWriter(ctx, output)
	if err != nil {
		return err
	}
	defer closeFn()

	contentType := imgutil.DetectFormat(data, "").ContentType
	if err := writer.Write(ctx, output, bytes.NewReader(data), contentType); err != nil {
		return fmt.Errorf("画像の書き込みに失敗しました (%s): %w", output, err)
	}
	slog.InfoContext(ctx, "画像を保存しました", "output", output, "size", len(data))
	return nil
}

// openWriter は出力先の種類に合った OutputWriter を返します。
func openWriter(ctx context.Context, output string) (remoteio.OutputWriter, func(), error) {
	var factory remoteio.IOFactory
	var err error
	switch {
	case remoteio.IsGCSURI(output):
		factory, err = gcsfactory.New(ctx)
	case remoteio.IsS3URI(output):
		factory, err = s3factory.New(ctx)
	default:
		return remoteio.NewUniversalIOWriter(nil, nil), func() {}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("ストレージクライアントの初期化に失敗しました: %w", err)
	}
	w, err := factory.OutputWriter()
	if err != nil {
		_ = factory.Close()
		return nil, nil, err
	}
	return w, func() { _ = factory.Close() }, nil
}
