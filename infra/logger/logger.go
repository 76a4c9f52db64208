package logger

import corelogger "github.com/nwp-workflow/taskgen/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// New returns a Logger for the given component. The output format is picked
// from APP_ENV and the level from TASKGEN_LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
