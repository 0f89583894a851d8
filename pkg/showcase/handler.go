package showcase

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/image-generator-kit/pkg/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var errShellRequired = errors.New("shell is required")

// pageData は index.html に渡す値です。
type pageData struct {
	Snapshot
	Presets  []Preset
	Endpoint string
}

// Handler はデモページの HTTP ハンドラー群です。
type Handler struct {
	shell    *Shell
	endpoint string
	// submit は生成を開始します。テストで同期実行に差し替えられます。
	submit func(ctx context.Context)
}

// NewRouter はデモページの gin エンジンを組み立てます。
func NewRouter(shell *Shell, endpoint string) (*gin.Engine, error) {
	h, err := NewHandler(shell, endpoint)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	h.RegisterRoutes(r)
	return r, nil
}

// NewHandler は Handler を作成します。
func NewHandler(shell *Shell, endpoint string) (*Handler, error) {
	if shell == nil {
		return nil, errShellRequired
	}
	h := &Handler{shell: shell, endpoint: endpoint}
	h.submit = func(ctx context.Context) {
		go func() {
			// 結果は Controller の状態とコールバックに反映される
			_, _ = shell.Generate(ctx)
		}()
	}
	return h, nil
}

// RegisterRoutes はルートを登録します。
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.GET("/state", h.State)
	r.POST("/fields", h.UpdateFields)
	r.POST("/presets/:key", h.ApplyPreset)
	r.POST("/generate", h.Generate)
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{
		Snapshot: h.shell.Snapshot(),
		Presets:  Presets(),
		Endpoint: h.endpoint,
	})
}

func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.shell.Snapshot())
}

func (h *Handler) UpdateFields(c *gin.Context) {
	var f Fields
	if err := c.ShouldBind(&f); err != nil {
		c.JSON(http.StatusBadRequest, domain.ErrorDetail{Detail: err.Error()})
		return
	}
	h.shell.SetFields(f)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ApplyPreset(c *gin.Context) {
	key := c.Param("key")
	if err := h.shell.ApplyPreset(key); err != nil {
		c.JSON(http.StatusNotFound, domain.ErrorDetail{Detail: err.Error()})
		return
	}
	slog.InfoContext(c.Request.Context(), "プリセットを適用しました", "preset", key)
	c.Redirect(http.StatusSeeOther, "/")
}

// Generate はフォームの値を反映してから生成を開始し、すぐにページへ戻します。
func (h *Handler) Generate(c *gin.Context) {
	if _, ok := c.GetPostForm("subject"); ok {
		var f Fields
		if err := c.ShouldBind(&f); err != nil {
			c.JSON(http.StatusBadRequest, domain.ErrorDetail{Detail: err.Error()})
			return
		}
		h.shell.SetFields(f)
	}
	// 生成中は再送信させない
	if h.shell.State().Loading() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	h.submit(context.WithoutCancel(c.Request.Context()))
	c.Redirect(http.StatusSeeOther, "/")
}
