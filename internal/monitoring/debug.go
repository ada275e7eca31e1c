package monitoring

import (
	"io"
	"log"
)

var debugLogger *log.Logger

// SetDebugLogger installs a debug logger that receives verbose buffer
// diagnostics (timestamp filter rejections, refused admissions such as
// timestamp regressions, interpolation failures). Pass nil to disable debug
// logging.
func SetDebugLogger(w io.Writer) {
	if w == nil {
		debugLogger = nil
		return
	}
	debugLogger = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

// Debugf logs a formatted debug message when a debug logger is configured.
// It is a no-op otherwise, so call sites can log unconditionally without
// paying formatting cost guards.
func Debugf(format string, args ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, args...)
	}
}
