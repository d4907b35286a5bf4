package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for log aggregation.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for local runs.
	FormatText Format = "text"
)

// Mode is the deployment mode a process runs in. It is unrelated to the
// payment environment of a funnel session.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode maps common spellings to a Mode. Unknown values mean development.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return ModeProduction
	default:
		return ModeDevelopment
	}
}

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets output format. Panics for unknown formats.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

func WithTextFormatter() Option {
	return func(c *config) {
		c.format = FormatText
	}
}

func WithJSONFormatter() Option {
	return func(c *config) {
		c.format = FormatJSON
	}
}

// WithOutput sets custom output destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		if len(attrs) > 0 {
			c.attrs = append(c.attrs, attrs...)
		}
	}
}

// WithContextExtractors registers functions that inject attributes from context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithContextValue adds an extractor logging ctx.Value(key) under name.
func WithContextValue(name string, key any) Option {
	return func(c *config) {
		if name == "" || key == nil {
			return
		}
		c.extractors = append(c.extractors, func(ctx context.Context) (slog.Attr, bool) {
			if v := ctx.Value(key); v != nil {
				return slog.Any(name, v), true
			}
			return slog.Attr{}, false
		})
	}
}

// WithDevelopment configures text output at debug level.
func WithDevelopment(service string) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = slog.LevelDebug
		c.format = FormatText
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("mode", string(ModeDevelopment)),
		)
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = slog.LevelInfo
		c.format = FormatJSON
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("mode", string(ModeProduction)),
		)
	}
}

// WithMode picks WithProduction or WithDevelopment.
func WithMode(mode Mode, service string) Option {
	if mode == ModeProduction {
		return WithProduction(service)
	}
	return WithDevelopment(service)
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// Discard returns a logger that drops every record. Components use it when no logger is supplied.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

// New creates a configured slog.Logger whose handler runs the registered context extractors.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(NewLogHandlerDecorator(handler, cfg.extractors...))
}
