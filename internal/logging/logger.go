// Package logging provides structured file logging for retroshelf.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cristianoliveira/retroshelf/internal/colors"
)

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

// sink is the destination shared by a logger and everything derived from it
// with With. Closing it once closes it for all of them.
type sink struct {
	clogger   *clog.Logger
	file      *os.File
	path      string
	closeOnce sync.Once
	closeErr  error
}

func (s *sink) close() error {
	s.closeOnce.Do(func() {
		if s.file != nil {
			s.closeErr = s.file.Close()
		}
	})
	return s.closeErr
}

// loggerImpl is the charmbracelet/log based implementation. It is immutable;
// With copies the base fields.
type loggerImpl struct {
	sink     *sink
	redactor *redactor
	fields   []any // ordered key-value pairs added via With
}

// Init opens a log file in LogDir, after rotating old ones, and returns a
// logger writing to it. A disabled config yields a no-op logger.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	logDir, err := LogDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(logDir, cfg.MaxFiles); err != nil {
		// Non-fatal
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	path := filepath.Join(logDir, fileName(cfg, time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	clogger := newCharm(f, cfg.Level, cfg.Format).With("pid", cfg.PID, "command", cfg.Command)
	return &loggerImpl{
		sink:     &sink{clogger: clogger, file: f, path: path},
		redactor: newRedactor(),
	}, nil
}

// New returns a logger writing to w in the given level and the default JSON
// format. It owns no file, so Shutdown is a no-op.
func New(w io.Writer, level string) Logger {
	return NewWithFormat(w, level, FormatJSON)
}

// NewWithFormat is New with an explicit format, FormatJSON or FormatLogfmt.
func NewWithFormat(w io.Writer, level, format string) Logger {
	return &loggerImpl{
		sink:     &sink{clogger: newCharm(w, level, format)},
		redactor: newRedactor(),
	}
}

// Noop returns a logger that discards all output.
func Noop() Logger {
	return noopLogger{}
}

func newCharm(w io.Writer, level, format string) *clog.Logger {
	clogger := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(level),
	})
	if format == FormatLogfmt {
		clogger.SetFormatter(clog.LogfmtFormatter)
	} else {
		clogger.SetFormatter(clog.JSONFormatter)
	}
	return clogger
}

// fileName is retroshelf_<time>_PID<pid>_<command>.log.
func fileName(cfg Config, now time.Time) string {
	command := strings.Join(strings.Fields(cfg.Command), "_")
	if command == "" {
		command = "retroshelf"
	}
	return fmt.Sprintf("%s%s_PID%d_%s.log", logFilePrefix, now.Format("20060102_150405"), cfg.PID, command)
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *loggerImpl) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

// log writes one entry. Base fields come first, in the order they were added.
func (l *loggerImpl) log(level clog.Level, msg string, args []any) {
	all := make([]any, 0, len(l.fields)+len(args))
	all = append(all, l.fields...)
	all = append(all, args...)
	l.sink.clogger.Log(level, msg, l.redactor.redact(all)...)
}

func (l *loggerImpl) With(args ...any) Logger {
	fields := make([]any, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	for i := 0; i+1 < len(args); i += 2 {
		if _, ok := args[i].(string); ok {
			fields = append(fields, args[i], args[i+1])
		}
	}
	return &loggerImpl{sink: l.sink, redactor: l.redactor, fields: fields}
}

func (l *loggerImpl) Shutdown() error {
	return l.sink.close()
}

// filePath returns the full path to the log file, or "" for writer loggers.
func (l *loggerImpl) filePath() string {
	return l.sink.path
}

// noopLogger is a logger that discards all output.
type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }

var (
	globalLogger     Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

// InitGlobal initializes the global logger from the global configuration and
// mirrors console output into it. Only the first call has any effect.
func InitGlobal() error {
	var err error
	globalLoggerOnce.Do(func() {
		var l Logger
		if l, err = Init(FromGlobalConfig()); err != nil {
			return
		}
		globalLoggerMu.Lock()
		globalLogger = l
		globalLoggerMu.Unlock()
		colors.SetLogger(l)
		if path := CurrentLogFile(); path != "" {
			colors.Debug("Logging to file:", path)
		}
	})
	return err
}

// GetGlobal returns the global logger, or a no-op logger if not initialized.
func GetGlobal() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// Debug logs a debug message using the global logger.
func Debug(msg string, args ...any) {
	GetGlobal().Debug(msg, args...)
}

// Info logs an info message using the global logger.
func Info(msg string, args ...any) {
	GetGlobal().Info(msg, args...)
}

// Warn logs a warning message using the global logger.
func Warn(msg string, args ...any) {
	GetGlobal().Warn(msg, args...)
}

// Error logs an error message using the global logger.
func Error(msg string, args ...any) {
	GetGlobal().Error(msg, args...)
}

// With returns a new global logger with additional key-value pairs.
func With(args ...any) Logger {
	return GetGlobal().With(args...)
}

// ShutdownGlobal shuts down the global logger.
func ShutdownGlobal() error {
	return GetGlobal().Shutdown()
}

// CurrentLogFile returns the path of the active log file, or "" when file
// logging is off.
func CurrentLogFile() string {
	if impl, ok := GetGlobal().(*loggerImpl); ok {
		return impl.filePath()
	}
	return ""
}
