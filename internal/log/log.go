// Package log is a thin structured-logging layer over logrus.
package log

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Fields is an alias for logrus.Fields.
type Fields logrus.Fields

// Logger is the logging surface used across finburn.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger
	WithContext(ctx context.Context) Logger

	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
}

type contextKey string

// CorrelationIDKey stores a request correlation ID in a context.
const CorrelationIDKey contextKey = "correlation_id"

const correlationIDField = "correlation_id"

type logger struct {
	entry *logrus.Entry
}

var base = newBase()

// L is the process-wide logger.
var L Logger = &logger{entry: logrus.NewEntry(base)}

// EnvLevel names the environment variable read by Init.
const EnvLevel = "FINBURN_LOG_LEVEL"

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return l
}

// Init applies FINBURN_LOG_LEVEL (or fallback when unset). Unknown levels keep
// the current level and return an error.
func Init(fallback string) error {
	level := os.Getenv(EnvLevel)
	if level == "" {
		level = fallback
	}
	if level == "" {
		return nil
	}
	return SetLevel(level)
}

// SetLevel parses and applies a logrus level name.
func SetLevel(level string) error {
	lv, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}
	base.SetLevel(lv)
	return nil
}

// SetJSON switches to JSON output, used by the daemon when logging to a file.
func SetJSON() {
	base.SetFormatter(&logrus.JSONFormatter{})
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetupTestLogger sends debug-level text logs to w.
func SetupTestLogger(w io.Writer) {
	base.SetOutput(w)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	L = &logger{entry: logrus.NewEntry(base)}
}

func (l *logger) WithField(key string, value any) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logger) WithError(err error) Logger {
	return &logger{entry: l.entry.WithError(err)}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return l.WithField(correlationIDField, id)
	}
	return l
}

func (l *logger) Debug(args ...any)                 { l.entry.Debug(args...) }
func (l *logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logger) Info(args ...any)                  { l.entry.Info(args...) }
func (l *logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logger) Warn(args ...any)                  { l.entry.Warn(args...) }
func (l *logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logger) Error(args ...any)                 { l.entry.Error(args...) }
func (l *logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

// WithCorrelationID returns ctx carrying a fresh correlation ID.
func WithCorrelationID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return context.WithValue(ctx, CorrelationIDKey, id), id
}

// GetCorrelationID returns the correlation ID stored in ctx, if any.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// ForContext returns L annotated with ctx's correlation ID.
func ForContext(ctx context.Context) Logger {
	return L.WithContext(ctx)
}
