package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbill/internal/config"
	"shopbill/internal/logger"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	cl := logger.WithComponent(l, "invoice")
	cl.Info().Str("invoice_number", "GRO-20240101-0001").Msg("created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "invoice", line["component"])
	assert.Equal(t, "GRO-20240101-0001", line["invoice_number"])
	assert.Equal(t, "created", line["message"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	_, err := logger.New(config.LogConfig{Level: "loud", Format: "json"}, &buf)
	assert.Error(t, err)
}
