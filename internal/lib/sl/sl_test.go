package sl_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("lock is offline"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("lock is offline"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.Panics(t, func() {
		_ = sl.Err(nil)
	})
}

func TestNewLogger_Local(t *testing.T) {
	var buf bytes.Buffer
	log := sl.NewLogger("local", &buf)

	log.Debug("door pressed", slog.String("device", "dev-1"))

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "msg=\"door pressed\"")
	assert.Contains(t, buf.String(), "device=dev-1")
}

func TestNewLogger_Prod(t *testing.T) {
	var buf bytes.Buffer
	log := sl.NewLogger("prod", &buf)

	log.Debug("не должно попасть в лог")
	assert.Empty(t, buf.String())

	log.Info("event scheduled", slog.String("date", "2024-06-01"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "event scheduled", entry["msg"])
	assert.Equal(t, "2024-06-01", entry["date"])
}
