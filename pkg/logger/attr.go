package logger

import (
	"log/slog"
	"time"
)

// Error records a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a conversion or lifecycle event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Sink records a conversion sink name under the key "sink".
func Sink(name string) slog.Attr {
	return slog.String("sink", name)
}

// PlanKey records a catalog key under the key "plan_key". Empty keys produce an empty Attr.
func PlanKey(key string) slog.Attr {
	if key == "" {
		return slog.Attr{}
	}
	return slog.String("plan_key", key)
}

// PriceID records a gateway price identifier under the key "price_id".
func PriceID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("price_id", id)
}

// SessionID records the funnel session identifier under the key "session_id".
// If id is nil, it returns an empty Attr.
func SessionID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("session_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
