// Package sink contains EventSink implementations that forward parsed transfer
// events to logs, Kafka or Postgres.
package sink

import (
	"context"
	"errors"

	"github.com/Mantelijo/transfer-ingest/internal/chain"
)

var _ chain.EventSink = (*multiSink)(nil)

// NewMultiSink returns a sink that emits every event to all sinks in order.
// A failing sink does not stop delivery to the remaining ones.
func NewMultiSink(sinks ...chain.EventSink) chain.EventSink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &multiSink{sinks: sinks}
}

type multiSink struct {
	sinks []chain.EventSink
}

func (m *multiSink) Emit(ctx context.Context, event *chain.TransferEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
