package storage

import (
	"log/slog"

	apperrors "github.com/maruel/bookshelf/internal/errors"
)

// Reporter surfaces recoverable failures to the user.
//
// The catalog never aborts on these; it hands them to the Reporter and keeps
// running with its in-memory state.
type Reporter interface {
	Report(err *apperrors.Error)
}

// LogReporter writes failures to the default slog logger.
type LogReporter struct{}

// Report implements Reporter.
func (LogReporter) Report(err *apperrors.Error) {
	attrs := []any{"code", err.Code(), "detail", err.Message()}
	if cause := err.Unwrap(); cause != nil {
		attrs = append(attrs, "err", cause)
	}
	if p, ok := err.Details()["path"]; ok {
		attrs = append(attrs, "path", p)
	}
	if err.Severity() == apperrors.SeverityWarning {
		slog.Warn(err.Title(), attrs...)
		return
	}
	slog.Error(err.Title(), attrs...)
}
