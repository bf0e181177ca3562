package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mantelijo/transfer-ingest/internal/chain"
)

const createTransferEventsTable = `
	CREATE TABLE IF NOT EXISTS transfer_events (
		id                 BIGSERIAL PRIMARY KEY,
		chain              TEXT        NOT NULL,
		kind               TEXT        NOT NULL,
		amount             TEXT        NOT NULL,
		source             TEXT        NOT NULL,
		destination        TEXT        NOT NULL,
		authority_or_token TEXT        NOT NULL,
		tx_reference       TEXT        NOT NULL,
		observed_at        TIMESTAMPTZ NOT NULL
	)
`

const insertTransferEvent = `
	INSERT INTO transfer_events (
		chain, kind, amount, source, destination, authority_or_token, tx_reference, observed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ chain.EventSink = (*postgresSink)(nil)

// NewPostgresSink opens a connection pool and makes sure the transfer_events
// table exists.
func NewPostgresSink(ctx context.Context, dsn string) (*postgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pg pool: %w", err)
	}

	s := &postgresSink{db: pool, pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

type postgresSink struct {
	db   execer
	pool *pgxpool.Pool
}

func (p *postgresSink) ensureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createTransferEventsTable); err != nil {
		return fmt.Errorf("failed to create transfer_events table: %w", err)
	}
	return nil
}

// Emit inserts one row per event. Amount is stored as text, Solana amounts are
// taken verbatim from program logs and are not guaranteed to be numeric.
func (p *postgresSink) Emit(ctx context.Context, event *chain.TransferEvent) error {
	_, err := p.db.Exec(ctx, insertTransferEvent,
		string(event.Chain),
		event.Kind,
		event.Amount,
		event.Source,
		event.Destination,
		event.AuthorityOrToken,
		event.TxReference,
		event.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer event: %w", err)
	}
	return nil
}

func (p *postgresSink) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
