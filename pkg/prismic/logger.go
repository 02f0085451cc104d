package prismic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Level tags passed to a LoggerFunc.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// NoopLogger discards everything. It is the default logger.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]interface{}) {}
func (NoopLogger) Info(string, map[string]interface{})  {}
func (NoopLogger) Warn(string, map[string]interface{})  {}
func (NoopLogger) Error(string, map[string]interface{}) {}

// LoggerFunc is a (level, message) sink. Fields are folded into the message
// as sorted key=value pairs.
type LoggerFunc func(level, message string)

func (f LoggerFunc) Debug(msg string, fields map[string]interface{}) { f(LevelDebug, format(msg, fields)) }
func (f LoggerFunc) Info(msg string, fields map[string]interface{})  { f(LevelInfo, format(msg, fields)) }
func (f LoggerFunc) Warn(msg string, fields map[string]interface{})  { f(LevelWarn, format(msg, fields)) }
func (f LoggerFunc) Error(msg string, fields map[string]interface{}) { f(LevelError, format(msg, fields)) }

func format(msg string, fields map[string]interface{}) string {
	if len(fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var builder strings.Builder

	builder.WriteString(msg)

	for _, key := range keys {
		fmt.Fprintf(&builder, " %s=%v", key, fields[key])
	}

	return builder.String()
}

// HCLogger adapts an hclog.Logger to Logger.
type HCLogger struct {
	logger hclog.Logger
}

// NewHCLogger wraps logger. A nil logger yields a null logger.
func NewHCLogger(logger hclog.Logger) *HCLogger {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &HCLogger{logger: logger}
}

func (l *HCLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, pairs(fields)...)
}

func (l *HCLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, pairs(fields)...)
}

func (l *HCLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, pairs(fields)...)
}

func (l *HCLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, pairs(fields)...)
}

func pairs(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return args
}
