// Package host defines the callbacks the engine expects from its embedding
// application: diagnostics, progress reporting during long I/O, and the
// locations of external rule files.
package host

import (
	"os"

	"github.com/hashlife/pkg/utils"
)

// Callbacks is the interface the engine and the rule loaders use to talk
// back to the embedding application.
type Callbacks interface {
	// Status reports a transient status message (GC progress, resizes).
	Status(msg string)

	// Warning reports a recoverable problem.
	Warning(msg string)

	// Fatal reports an unrecoverable invariant violation. It must not return.
	Fatal(msg string)

	// AbortProgress reports progress (0..1) during a long operation and
	// returns true if the user asked to abort.
	AbortProgress(fraction float64, msg string) bool

	// Aborted returns true once an abort has been requested.
	Aborted() bool

	// UserRulesDir returns the directory searched first for .rule/.table/.tree files.
	UserRulesDir() string

	// SystemRulesDir returns the fallback rules directory.
	SystemRulesDir() string
}

// Default is a Callbacks implementation that logs through the global logger
// and never aborts. Fatal exits the process.
type Default struct {
	Logger   utils.Logger
	UserDir  string
	RulesDir string
}

// NewDefault creates a Default host using the global logger.
func NewDefault() *Default {
	return &Default{Logger: utils.GetGlobalLogger()}
}

// Status logs a status message at info level.
func (h *Default) Status(msg string) {
	h.logger().Info("%s", msg)
}

// Warning logs a warning message.
func (h *Default) Warning(msg string) {
	h.logger().Warn("%s", msg)
}

// Fatal logs the message and terminates the process.
func (h *Default) Fatal(msg string) {
	h.logger().Error("%s", msg)
	os.Exit(1)
}

// AbortProgress ignores progress reports and never aborts.
func (h *Default) AbortProgress(fraction float64, msg string) bool {
	return false
}

// Aborted always returns false.
func (h *Default) Aborted() bool {
	return false
}

// UserRulesDir returns the configured user rules directory.
func (h *Default) UserRulesDir() string {
	return h.UserDir
}

// SystemRulesDir returns the configured system rules directory.
func (h *Default) SystemRulesDir() string {
	return h.RulesDir
}

func (h *Default) logger() utils.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return utils.GetGlobalLogger()
}
