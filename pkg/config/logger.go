package config

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel は LOG_LEVEL の文字列を slog のレベルに変換します。未知の値は Info です。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger は本番なら JSON、それ以外ならテキスト形式のロガーを作るのだ。
func NewLogger(c *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.LogLevel)}
	var h slog.Handler
	if c.IsProduction() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("version", c.Version)
}
