package chain

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// SubscriberManager manages all blockchain transaction subscribers within the
// application
type SubscriberManager interface {
	// RegisterSubscribers registers new subscribers and calls its Init.
	// RegisterSubscriber should not be called concurrently.
	RegisterSubscribers(subscribers ...TransactionSubscriber) error

	// StartAll runs one Supervisor per registered subscriber, all of them
	// emitting into sink. Supervisors run independently, a failing chain never
	// stops the others. StartAll blocks until ctx is cancelled.
	StartAll(ctx context.Context, sink EventSink) error
}

func NewSubsciberManager(opts ...SupervisorOption) SubscriberManager {
	return &mapSubManager{
		subs: make(map[ChainName]TransactionSubscriber),
		opts: opts,
	}
}

var _ SubscriberManager = (*mapSubManager)(nil)

type mapSubManager struct {
	subs map[ChainName]TransactionSubscriber
	// Applied to every supervisor started by StartAll.
	opts []SupervisorOption
}

func (m *mapSubManager) RegisterSubscribers(subscribers ...TransactionSubscriber) error {
	for _, subscriber := range subscribers {
		chain := subscriber.Name()
		if _, ok := m.subs[chain]; ok {
			return fmt.Errorf("subscriber for chain %s already exists", chain)
		}

		if err := subscriber.Init(); err != nil {
			return fmt.Errorf("initializing %s subscriber: %w", chain, err)
		}
		m.subs[chain] = subscriber
	}
	return nil
}

func (m *mapSubManager) StartAll(ctx context.Context, sink EventSink) error {
	if len(m.subs) == 0 {
		return fmt.Errorf("no registered subscribers")
	}

	g := errgroup.Group{}
	for _, sub := range m.subs {
		sub := sub
		supervisor := NewSupervisor(sub, sink, m.opts...)
		g.Go(func() error {
			slog.Info("starting supervisor", slog.String("chain", string(sub.Name())))
			return supervisor.Run(ctx)
		})
	}
	return g.Wait()
}
