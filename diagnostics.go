package hostbridge

import (
	"log/slog"
)

// DiagnosticsSink receives human-readable messages originating upstream
// of this core, such as the list of extensions a catalog merge removed
// because of a dependency cycle. Messages are forwarded, not generated,
// here.
type DiagnosticsSink interface {
	Report(message string)
}

// slogDiagnostics is the default sink; it logs messages at warn level.
type slogDiagnostics struct {
	logger *slog.Logger
}

func (d *slogDiagnostics) Report(message string) {
	d.logger.Warn(message)
}
