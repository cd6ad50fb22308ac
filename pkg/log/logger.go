// Package log provides structured JSON logging for pipeline operations.
//
// Log records carry standard attribute keys (see attributes.go) so that
// training and inference events can be filtered by job id, operation, and
// data shape. Errors produced by pkg/errors are logged with their stack
// trace attached as a separate attribute.
package log

import (
	"log/slog"
	"os"

	"github.com/automlhq/tabular/pkg/errors"
)

// Setup installs the process-wide JSON logger at the given level.
func Setup(loglevel string) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
	return nil
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (slog.Level, error) {
	switch level {
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Newf("invalid log level: %s", level)
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
