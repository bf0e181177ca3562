package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSinkEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewLogSink(slog.New(slog.NewJSONHandler(buf, nil)))

	require.NoError(t, s.Emit(context.Background(), testEvent()))

	record := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "received transfer event", record["msg"])
	assert.Equal(t, "SOL", record["chain"])
	assert.Equal(t, "Transfer", record["kind"])
	assert.Equal(t, "1000000", record["amount"])
	assert.Equal(t, "AAA", record["source"])
	assert.Equal(t, "BBB", record["destination"])
	assert.Equal(t, "CCC", record["authority_or_token"])
	assert.Equal(t, "2024-10-01T12:00:00Z", record["observed_at"])
}

func TestNewLogSinkDefaultLogger(t *testing.T) {
	s := NewLogSink(nil)
	assert.Same(t, slog.Default(), s.logger)
}
