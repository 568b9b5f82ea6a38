package logger

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Errors groups the non-nil errors under "errors". Returns an empty Attr
// when every error is nil.
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

// Error records err under "error", or returns an empty Attr for nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Schema(name string) slog.Attr {
	return slog.String("schema", name)
}

// Path records a value location in dotted form under "path".
func Path(path []string) slog.Attr {
	return slog.String("path", strings.Join(path, "."))
}

func ErrorCount(n int) slog.Attr {
	return slog.Int("error_count", n)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
