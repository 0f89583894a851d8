package showcase

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shouni/image-generator-kit/pkg/controller"
)

// fakeDoer は受け取った subject を記録して固定のレスポンスを返すのだ。
type fakeDoer struct {
	mu       sync.Mutex
	subjects []string
	status   int
	body     string
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.subjects = append(d.subjects, req.FormValue("subject"))
	status, body := d.status, d.body
	d.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
		body = `{"image_url":"https://example.com/generated.png"}`
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func (d *fakeDoer) sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.subjects...)
}

func newTestShell(t *testing.T, doer *fakeDoer) *Shell {
	t.Helper()
	ctrl, err := controller.New("http://service.test/generate_image/", controller.WithDoer(doer))
	require.NoError(t, err)
	s, err := NewShell(ctrl)
	require.NoError(t, err)
	return s
}
