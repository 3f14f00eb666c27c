package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrmdash/config"
	"ctrmdash/logger"
)

// go test -v --run ^TestNewRejectsBadLevel$
func TestNewRejectsBadLevel(t *testing.T) {
	_, err := logger.New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

// go test -v --run ^TestNewWritesJSONFile$
func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dash.log")
	log, err := logger.NewQuiet(config.LogConfig{Level: "info", OutputFile: path, Environment: "test"})
	require.NoError(t, err)

	log.Info("dashboard started")
	log.Debug("not written")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"msg":"dashboard started"`)
	assert.Contains(t, text, `"env":"test"`)
	assert.False(t, strings.Contains(text, "not written"))
}

// go test -v --run ^TestNewQuietWithoutFile$
func TestNewQuietWithoutFile(t *testing.T) {
	log, err := logger.NewQuiet(config.LogConfig{Level: "debug"})
	require.NoError(t, err)
	log.Info("dropped")
}
