package svc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mantelijo/transfer-ingest/internal/chain"
	"github.com/Mantelijo/transfer-ingest/internal/config"
	"github.com/Mantelijo/transfer-ingest/internal/sink"
)

// RunTransferIngest starts both chain supervisors and blocks until the process
// receives SIGINT or SIGTERM.
func RunTransferIngest() {
	// Init logger
	logger := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})
	slog.SetDefault(slog.New(logger))

	// Parse the required env values
	// Solana and Ethereum websocket endpoints, sinks
	cfg, err := config.Load()
	if err != nil {
		slog.Error(
			"failed to load required env values",
			slog.Any("error", err),
		)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error(
			"service encountered critical error",
			slog.Any("error", err),
		)
		os.Exit(1)
	}
	slog.Info("service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	eventSink, closeSinks, err := newEventSink(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize event sinks: %w", err)
	}
	defer closeSinks()

	// Initialize the chain subscribers
	solana := chain.NewSolanaMainnetSubscriber(cfg.SolanaRpcUrl, cfg.SolanaWatchedAddresses...)
	ethereum := chain.NewEthereumMainnetSubscriber(cfg.EthereumRpcUrl,
		chain.WithWatchedContracts{Contracts: cfg.EthereumWatchedContracts},
	)
	subManager := chain.NewSubsciberManager(
		chain.WithReconnectPolicy{Policy: reconnectPolicy(cfg)},
	)
	if err := subManager.RegisterSubscribers(solana, ethereum); err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	return subManager.StartAll(ctx, eventSink)
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: true,
	}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func reconnectPolicy(cfg *config.Config) chain.ReconnectPolicy {
	if cfg.ReconnectStrategy == config.ReconnectExponential {
		return chain.ExponentialBackoff{
			Min:    cfg.ReconnectDelay,
			Max:    cfg.ReconnectMaxDelay,
			Factor: 2,
			Jitter: 0.2,
		}
	}
	return chain.FixedDelay(cfg.ReconnectDelay)
}

// newEventSink builds the configured sinks. The returned func closes producers
// and pools.
func newEventSink(ctx context.Context, cfg *config.Config) (chain.EventSink, func(), error) {
	sinks := []chain.EventSink{}
	closers := []io.Closer{}
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close sink", slog.Any("error", err))
			}
		}
	}

	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, sink.NewLogSink(slog.Default()))
		case config.SinkKafka:
			k, err := sink.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, k)
			closers = append(closers, k)
		case config.SinkPostgres:
			p, err := sink.NewPostgresSink(ctx, cfg.PostgresDsn)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			sinks = append(sinks, p)
			closers = append(closers, p)
		default:
			closeAll()
			return nil, nil, fmt.Errorf("unknown sink %q", name)
		}
	}

	return sink.NewMultiSink(sinks...), closeAll, nil
}
