package sink

import (
	"context"
	"log/slog"

	"github.com/Mantelijo/transfer-ingest/internal/chain"
)

var _ chain.EventSink = (*logSink)(nil)

func NewLogSink(logger *slog.Logger) *logSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSink{logger: logger}
}

type logSink struct {
	logger *slog.Logger
}

func (l *logSink) Emit(ctx context.Context, event *chain.TransferEvent) error {
	l.logger.LogAttrs(ctx, slog.LevelInfo, "received transfer event",
		slog.String("chain", string(event.Chain)),
		slog.String("kind", event.Kind),
		slog.String("tx_reference", event.TxReference),
		slog.String("amount", event.Amount),
		slog.String("source", event.Source),
		slog.String("destination", event.Destination),
		slog.String("authority_or_token", event.AuthorityOrToken),
		slog.Time("observed_at", event.ObservedAt),
	)
	return nil
}
