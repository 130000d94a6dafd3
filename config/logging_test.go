package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggingBuildJSON(test *testing.T) {
	buffer := &bytes.Buffer{}
	logger, err := Logging{Level: "warn", Format: FormatJSON}.build(zapcore.AddSync(buffer))
	require.NoError(test, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(test, logger.Sync())

	assert.NotContains(test, buffer.String(), "hidden")
	assert.Contains(test, buffer.String(), `"message":"shown"`)
	assert.Contains(test, buffer.String(), `"level":"warn"`)
}

func TestLoggingBuildConsole(test *testing.T) {
	buffer := &bytes.Buffer{}
	logger, err := Logging{Level: "debug", Format: FormatConsole}.build(
		zapcore.AddSync(buffer),
	)
	require.NoError(test, err)

	logger.Debug("console line")
	assert.Contains(test, buffer.String(), "console line")
	assert.NotContains(test, buffer.String(), `"message"`)
}

func TestLoggingBuildInvalid(test *testing.T) {
	_, err := Logging{Level: "loud", Format: FormatJSON}.Build()
	assert.Error(test, err)

	_, err = Logging{Level: "info", Format: "xml"}.Build()
	assert.Error(test, err)
}
