package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Fingerprint records a visitor fingerprint. Any string-like type works.
func Fingerprint[T ~string](fp T) slog.Attr {
	return slog.String("fingerprint", string(fp))
}

// Page records a page label.
func Page[T ~string](label T) slog.Attr {
	return slog.String("page", string(label))
}

// Event records the report event; empty for plain page views.
func Event(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("event", name)
}

func Endpoint(url string) slog.Attr {
	return slog.String("endpoint", url)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status", code)
}

// Token records a session token with all but its last four characters
// masked.
func Token(token string) slog.Attr {
	if len(token) > 4 {
		token = "****" + token[len(token)-4:]
	}
	return slog.String("token", token)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
