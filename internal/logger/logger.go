// Package logger configures the process-wide structured logger and the
// startup banner.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
)

// Config selects where and how log records are written.
type Config struct {
	// Writer defaults to os.Stderr.
	Writer io.Writer
	Debug  bool
	// Format is "text" or "json". Anything else falls back to text.
	Format string
}

// Setup builds a logger from cfg and installs it as slog.Default.
func Setup(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	addSource := false
	if cfg.Debug {
		level = slog.LevelDebug
		addSource = true
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var bannerColor = color.New(color.FgGreen, color.Bold)

// Banner writes the startup line announcing the listening port.
func Banner(w io.Writer, port int) error {
	_, err := bannerColor.Fprintf(w, "Server is running on port %d", port)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}
