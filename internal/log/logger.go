package log

import (
	"io"
	"log/slog"
	"strings"
)

// level returns Debug for verbose output and Warn otherwise.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger returns a text logger writing to w through a SecureHandler.
// verbose lowers the level from Warn to Debug.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(h))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(h))
}

// redactErrorText masks URLs embedded in an error message. net/http errors
// quote the request URL, e.g. `Post "http://u:p@host/": dial tcp ...`.
func redactErrorText(msg string) string {
	fields := strings.Fields(msg)
	changed := false
	for i, f := range fields {
		trimmed := strings.Trim(f, `"':,`)
		if r := RedactURL(trimmed); r != trimmed {
			fields[i] = strings.Replace(f, trimmed, r, 1)
			changed = true
		}
	}
	if !changed {
		return msg
	}
	return strings.Join(fields, " ")
}
