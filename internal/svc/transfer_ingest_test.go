package svc

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mantelijo/transfer-ingest/internal/chain"
	"github.com/Mantelijo/transfer-ingest/internal/config"
)

func TestReconnectPolicy(t *testing.T) {
	fixed := reconnectPolicy(&config.Config{
		ReconnectStrategy: config.ReconnectFixed,
		ReconnectDelay:    5 * time.Second,
	})
	assert.Equal(t, chain.FixedDelay(5*time.Second), fixed)

	exp := reconnectPolicy(&config.Config{
		ReconnectStrategy: config.ReconnectExponential,
		ReconnectDelay:    time.Second,
		ReconnectMaxDelay: time.Minute,
	})
	assert.Equal(t, chain.ExponentialBackoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: 0.2,
	}, exp)
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(&config.Config{LogLevel: slog.LevelWarn, LogFormat: "json"}, buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept", slog.String("chain", "SOL"))
	record := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "SOL", record["chain"])

	buf.Reset()
	text := newLogger(&config.Config{LogLevel: slog.LevelInfo, LogFormat: "text"}, buf)
	text.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewEventSink(t *testing.T) {
	s, closeSinks, err := newEventSink(context.Background(), &config.Config{Sinks: []string{config.SinkLog}})
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NoError(t, s.Emit(context.Background(), &chain.TransferEvent{Chain: chain.Solana}))
	closeSinks()

	_, _, err = newEventSink(context.Background(), &config.Config{Sinks: []string{"stdout"}})
	assert.ErrorContains(t, err, `unknown sink "stdout"`)

	_, _, err = newEventSink(context.Background(), &config.Config{Sinks: []string{config.SinkLog, config.SinkPostgres}})
	assert.ErrorContains(t, err, "pg dsn is required")
}

func TestRunRejectsInvalidSubscriberConfig(t *testing.T) {
	cfg := &config.Config{
		SolanaRpcUrl:             "ws://localhost:8900",
		EthereumRpcUrl:           "ws://localhost:8546",
		EthereumWatchedContracts: []string{"0x12"},
		ReconnectStrategy:        config.ReconnectFixed,
		ReconnectDelay:           5 * time.Second,
		Sinks:                    []string{config.SinkLog},
	}

	err := run(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrConfiguration)
	assert.ErrorContains(t, err, "watched contract")
}
