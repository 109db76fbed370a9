package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/hespress-digest/internal/logger"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("preprocess", &buf, "info", "json")
	log.Info("batch done", "records", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "preprocess", line["service"])
	require.Equal(t, "batch done", line["msg"])
	require.EqualValues(t, 3, line["records"])
}

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("worker", &buf, "warn", "")
	log.Info("hidden")
	require.Empty(t, buf.String())

	log.Warn("shown")
	require.Contains(t, buf.String(), "msg=shown")
	require.Contains(t, buf.String(), "service=worker")
}
