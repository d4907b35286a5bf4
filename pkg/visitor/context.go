package visitor

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// WithContext stores info in ctx.
func WithContext(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// FromContext returns the stored info, or the zero Info.
func FromContext(ctx context.Context) Info {
	if ctx == nil {
		return Info{}
	}
	info, _ := ctx.Value(contextKey{}).(Info)
	return info
}

// RequestID returns the correlation id stored in ctx.
func RequestID(ctx context.Context) string {
	return FromContext(ctx).RequestID
}

// Middleware stores the visitor info in the request context and echoes the
// request id in the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := FromRequest(r)
		w.Header().Set(RequestIDHeader, info.RequestID)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), info)))
	})
}

// LoggerExtractor adds request_id to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RequestID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}
