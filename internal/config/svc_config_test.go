package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadKoanf(t *testing.T, values map[string]interface{}) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(defaults(), "."), nil))
	require.NoError(t, k.Load(confmap.Provider(values, "."), nil))
	return k
}

func withUrls(values map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{
		RPC_WS_URL_SOLANA:   "wss://api.mainnet-beta.solana.com",
		RPC_WS_URL_ETHEREUM: "wss://mainnet.infura.io/ws/v3/key",
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}

func TestFromKoanfDefaults(t *testing.T) {
	cfg, err := FromKoanf(loadKoanf(t, withUrls(nil)))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		SolanaRpcUrl:             "wss://api.mainnet-beta.solana.com",
		EthereumRpcUrl:           "wss://mainnet.infura.io/ws/v3/key",
		SolanaWatchedAddresses:   []string{},
		EthereumWatchedContracts: []string{},
		ReconnectStrategy:        ReconnectFixed,
		ReconnectDelay:           5 * time.Second,
		ReconnectMaxDelay:        time.Minute,
		Sinks:                    []string{SinkLog},
		KafkaBrokers:             []string{},
		KafkaTopic:               "transfer-events",
		LogLevel:                 slog.LevelInfo,
		LogFormat:                "text",
	}, cfg)
}

func TestFromKoanf(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name:    "missing solana url",
			values:  map[string]interface{}{RPC_WS_URL_ETHEREUM: "ws://localhost:8546"},
			wantErr: "both RPC_WS_URL_SOLANA and RPC_WS_URL_ETHEREUM are required",
		},
		{
			name:    "missing ethereum url",
			values:  map[string]interface{}{RPC_WS_URL_SOLANA: "ws://localhost:8900"},
			wantErr: "both RPC_WS_URL_SOLANA and RPC_WS_URL_ETHEREUM are required",
		},
		{
			name: "watched lists",
			values: withUrls(map[string]interface{}{
				SOLANA_WATCHED_ADDRESSES:   " a, b,,c ",
				ETHEREUM_WATCHED_CONTRACTS: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			}),
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"a", "b", "c"}, cfg.SolanaWatchedAddresses)
				assert.Equal(t, []string{"0xdAC17F958D2ee523a2206206994597C13D831ec7"}, cfg.EthereumWatchedContracts)
			},
		},
		{
			name: "exponential reconnect",
			values: withUrls(map[string]interface{}{
				RECONNECT_STRATEGY:  "Exponential",
				RECONNECT_DELAY:     "1s",
				RECONNECT_MAX_DELAY: "30s",
			}),
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ReconnectExponential, cfg.ReconnectStrategy)
				assert.Equal(t, time.Second, cfg.ReconnectDelay)
				assert.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
			},
		},
		{
			name:    "unknown reconnect strategy",
			values:  withUrls(map[string]interface{}{RECONNECT_STRATEGY: "linear"}),
			wantErr: `unknown RECONNECT_STRATEGY "linear"`,
		},
		{
			name:    "malformed delay",
			values:  withUrls(map[string]interface{}{RECONNECT_DELAY: "five"}),
			wantErr: "RECONNECT_DELAY",
		},
		{
			name:    "zero delay",
			values:  withUrls(map[string]interface{}{RECONNECT_DELAY: "0s"}),
			wantErr: "RECONNECT_DELAY must be positive",
		},
		{
			name: "max delay below delay",
			values: withUrls(map[string]interface{}{
				RECONNECT_STRATEGY:  ReconnectExponential,
				RECONNECT_DELAY:     "10s",
				RECONNECT_MAX_DELAY: "1s",
			}),
			wantErr: "RECONNECT_MAX_DELAY must not be lower than RECONNECT_DELAY",
		},
		{
			name: "sinks are deduplicated",
			values: withUrls(map[string]interface{}{
				EVENT_SINKS:   "postgres, LOG ,log,kafka",
				POSTGRES_DSN:  "postgres://localhost:5432/transfers",
				KAFKA_BROKERS: "kafka-1:9092, kafka-2:9092",
			}),
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{SinkKafka, SinkLog, SinkPostgres}, cfg.Sinks)
				assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
			},
		},
		{
			name:    "no sinks",
			values:  withUrls(map[string]interface{}{EVENT_SINKS: " , "}),
			wantErr: "EVENT_SINKS is empty",
		},
		{
			name:    "unknown sink",
			values:  withUrls(map[string]interface{}{EVENT_SINKS: "stdout"}),
			wantErr: `unknown sink "stdout"`,
		},
		{
			name:    "kafka without brokers",
			values:  withUrls(map[string]interface{}{EVENT_SINKS: SinkKafka}),
			wantErr: "kafka sink requires KAFKA_BROKERS and KAFKA_TOPIC",
		},
		{
			name:    "postgres without dsn",
			values:  withUrls(map[string]interface{}{EVENT_SINKS: SinkPostgres}),
			wantErr: "postgres sink requires POSTGRES_DSN",
		},
		{
			name:   "debug json logging",
			values: withUrls(map[string]interface{}{LOG_LEVEL: "debug", LOG_FORMAT: "JSON"}),
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
				assert.Equal(t, "json", cfg.LogFormat)
			},
		},
		{
			name:    "unknown log level",
			values:  withUrls(map[string]interface{}{LOG_LEVEL: "verbose"}),
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "unknown log format",
			values:  withUrls(map[string]interface{}{LOG_FORMAT: "xml"}),
			wantErr: `unknown LOG_FORMAT "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromKoanf(loadKoanf(t, tt.values))
			if tt.wantErr != "" {
				assert.ErrorIs(t, err, ErrConfiguration)
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(RPC_WS_URL_SOLANA, "ws://localhost:8900")
	t.Setenv(RPC_WS_URL_ETHEREUM, "ws://localhost:8546")
	t.Setenv(EVENT_SINKS, "log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8900", cfg.SolanaRpcUrl)
	assert.Equal(t, "ws://localhost:8546", cfg.EthereumRpcUrl)
	assert.Equal(t, []string{SinkLog}, cfg.Sinks)
	assert.Equal(t, "ws://localhost:8900", Global.String(RPC_WS_URL_SOLANA))
}
