package prismic_test

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

func TestLoggerFunc(t *testing.T) {
	t.Parallel()

	type line struct{ level, message string }

	var lines []line

	logger := prismic.LoggerFunc(func(level, message string) {
		lines = append(lines, line{level, message})
	})

	logger.Debug("fetching", nil)
	logger.Info("fetched", map[string]interface{}{"url": "https://repo/api", "bytes": 42})
	logger.Warn("slow", map[string]interface{}{"duration": "3s"})
	logger.Error("failed", map[string]interface{}{})

	assert.Equal(t, []line{
		{prismic.LevelDebug, "fetching"},
		{prismic.LevelInfo, "fetched bytes=42 url=https://repo/api"},
		{prismic.LevelWarn, "slow duration=3s"},
		{prismic.LevelError, "failed"},
	}, lines)
}

func TestHCLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := prismic.NewHCLogger(hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Level:  hclog.Debug,
		Output: &buf,
	}))

	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})
	logger.Warn("preview failed", map[string]interface{}{"error": "boom"})

	output := buf.String()
	assert.Contains(t, output, "[DEBUG]")
	assert.Contains(t, output, "test: HTTP Request")
	assert.Contains(t, output, "method=GET")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "error=boom")
}

func TestHCLogger_NilFallsBackToNull(t *testing.T) {
	t.Parallel()

	logger := prismic.NewHCLogger(nil)

	assert.NotPanics(t, func() {
		logger.Info("ignored", map[string]interface{}{"k": "v"})
	})
}

func TestNoopLogger(t *testing.T) {
	t.Parallel()

	var logger prismic.Logger = prismic.NoopLogger{}

	assert.NotPanics(t, func() {
		logger.Debug("x", nil)
		logger.Info("x", nil)
		logger.Warn("x", nil)
		logger.Error("x", nil)
	})
}
