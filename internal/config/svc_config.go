package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/knadh/koanf/v2"
)

// ErrConfiguration is wrapped by every error caused by missing or invalid
// configuration. Configuration errors are fatal at startup.
var ErrConfiguration = errors.New("invalid configuration")

const (
	ReconnectFixed       = "fixed"
	ReconnectExponential = "exponential"

	SinkLog      = "log"
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"
)

var Global = koanf.New(".")

// Config is the typed view of Global produced by Load.
type Config struct {
	SolanaRpcUrl   string
	EthereumRpcUrl string

	SolanaWatchedAddresses   []string
	EthereumWatchedContracts []string

	ReconnectStrategy string
	ReconnectDelay    time.Duration
	ReconnectMaxDelay time.Duration

	Sinks        []string
	KafkaBrokers []string
	KafkaTopic   string
	PostgresDsn  string

	LogLevel  slog.Level
	LogFormat string
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		RECONNECT_STRATEGY:  ReconnectFixed,
		RECONNECT_DELAY:     "5s",
		RECONNECT_MAX_DELAY: "1m",
		EVENT_SINKS:         SinkLog,
		KAFKA_TOPIC:         "transfer-events",
		LOG_LEVEL:           "info",
		LOG_FORMAT:          "text",
	}
}

// LoadRequiredEnv loads the environment variables required to run the services.
// An error is returned if any of the required variables are missing in .env or
// env.
func LoadRequiredEnv() error {
	// Load default values
	Global.Load(confmap.Provider(defaults(), "."), nil)

	// .env file is optional, but we still try to load it if it exists.
	err := Global.Load(
		file.Provider(".env"), dotenv.Parser(),
	)
	if err != nil {
		slog.Warn("failed to load .env file", slog.Any("error", err))
	}

	if err := Global.Load(env.Provider("", "", nil), nil); err != nil {
		slog.Warn("failed to load environment variables", slog.Any("error", err))
	}

	required := []string{
		RPC_WS_URL_SOLANA,
		RPC_WS_URL_ETHEREUM,
	}

	for _, r := range required {
		if Global.String(r) == "" {
			return fmt.Errorf("%w: required environment variable %s is missing", ErrConfiguration, r)
		}
	}

	return nil
}

// Load reads the environment into Global and validates it.
func Load() (*Config, error) {
	if err := LoadRequiredEnv(); err != nil {
		return nil, err
	}
	return FromKoanf(Global)
}

// FromKoanf builds and validates a Config from already loaded values.
func FromKoanf(k *koanf.Koanf) (*Config, error) {
	c := &Config{
		SolanaRpcUrl:             k.String(RPC_WS_URL_SOLANA),
		EthereumRpcUrl:           k.String(RPC_WS_URL_ETHEREUM),
		SolanaWatchedAddresses:   splitList(k.String(SOLANA_WATCHED_ADDRESSES)),
		EthereumWatchedContracts: splitList(k.String(ETHEREUM_WATCHED_CONTRACTS)),
		ReconnectStrategy:        strings.ToLower(k.String(RECONNECT_STRATEGY)),
		Sinks:                    splitList(strings.ToLower(k.String(EVENT_SINKS))),
		KafkaBrokers:             splitList(k.String(KAFKA_BROKERS)),
		KafkaTopic:               k.String(KAFKA_TOPIC),
		PostgresDsn:              k.String(POSTGRES_DSN),
		LogFormat:                strings.ToLower(k.String(LOG_FORMAT)),
	}

	var err error
	if c.ReconnectDelay, err = parseDuration(k, RECONNECT_DELAY); err != nil {
		return nil, err
	}
	if c.ReconnectMaxDelay, err = parseDuration(k, RECONNECT_MAX_DELAY); err != nil {
		return nil, err
	}
	if err := c.LogLevel.UnmarshalText([]byte(k.String(LOG_LEVEL))); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfiguration, LOG_LEVEL, err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.SolanaRpcUrl == "" || c.EthereumRpcUrl == "" {
		return fmt.Errorf("%w: both %s and %s are required", ErrConfiguration, RPC_WS_URL_SOLANA, RPC_WS_URL_ETHEREUM)
	}

	switch c.ReconnectStrategy {
	case ReconnectFixed, ReconnectExponential:
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrConfiguration, RECONNECT_STRATEGY, c.ReconnectStrategy)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrConfiguration, RECONNECT_DELAY)
	}
	if c.ReconnectStrategy == ReconnectExponential && c.ReconnectMaxDelay < c.ReconnectDelay {
		return fmt.Errorf("%w: %s must not be lower than %s", ErrConfiguration, RECONNECT_MAX_DELAY, RECONNECT_DELAY)
	}

	if len(c.Sinks) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrConfiguration, EVENT_SINKS)
	}
	for _, s := range c.Sinks {
		switch s {
		case SinkLog:
		case SinkKafka:
			if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
				return fmt.Errorf("%w: kafka sink requires %s and %s", ErrConfiguration, KAFKA_BROKERS, KAFKA_TOPIC)
			}
		case SinkPostgres:
			if c.PostgresDsn == "" {
				return fmt.Errorf("%w: postgres sink requires %s", ErrConfiguration, POSTGRES_DSN)
			}
		default:
			return fmt.Errorf("%w: unknown sink %q", ErrConfiguration, s)
		}
	}
	slices.Sort(c.Sinks)
	c.Sinks = slices.Compact(c.Sinks)

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown %s %q", ErrConfiguration, LOG_FORMAT, c.LogFormat)
	}

	return nil
}

func parseDuration(k *koanf.Koanf, key string) (time.Duration, error) {
	d, err := time.ParseDuration(k.String(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
