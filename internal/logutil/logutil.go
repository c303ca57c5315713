package logutil

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

var (
	logger  = newLogger(os.Stderr)
	verbose bool
	mu      sync.RWMutex
)

func newLogger(w io.Writer) *log.Logger {
	opts := log.Options{Prefix: "xsync", ReportTimestamp: true, Level: log.InfoLevel}
	// cron and systemd capture stderr, keep it parseable there
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		opts.Formatter = log.LogfmtFormatter
	}
	return log.NewWithOptions(w, opts)
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level := logger.GetLevel()
	logger = newLogger(w)
	logger.SetLevel(level)
}

// SetVerbose adjusts the global logging level.
func SetVerbose(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = enable
	if enable {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// Verbose reports whether verbose logging is enabled.
func Verbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debugf logs a debug message when verbose logging is enabled.
func Debugf(format string, args ...any) {
	current().Debugf(format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	current().Infof(format, args...)
}

// Warnf logs a warning that does not stop the sync.
func Warnf(format string, args ...any) {
	current().Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	current().Errorf(format, args...)
}

// Leveled adapts the package logger to retryablehttp.LeveledLogger.
// Retry chatter is only shown in verbose mode.
type Leveled struct{}

func (Leveled) Error(msg string, keyvals ...any) { current().Error(msg, keyvals...) }
func (Leveled) Warn(msg string, keyvals ...any)  { current().Warn(msg, keyvals...) }
func (Leveled) Info(msg string, keyvals ...any)  { current().Debug(msg, keyvals...) }
func (Leveled) Debug(msg string, keyvals ...any) { current().Debug(msg, keyvals...) }
