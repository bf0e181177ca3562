package chain

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
)

// ConnState is the lifecycle state of a chain subscription.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Subscribed
	Closing
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

var errAlreadyRunning = errors.New("supervisor is already running")

// Supervisor owns the subscription lifecycle of one chain: connect, subscribe,
// receive and reconnect after a delay. A Supervisor holds exactly one socket at
// a time and is its only reader and writer. Supervisors of different chains
// share nothing.
type Supervisor struct {
	sub    TransactionSubscriber
	sink   EventSink
	dial   DialFunc
	clock  clock.Clock
	policy ReconnectPolicy
	logger *slog.Logger

	// Holds at most one pending connect attempt.
	wake chan struct{}

	mu                 sync.Mutex
	running            bool
	state              ConnState
	conn               Conn
	reconnectScheduled bool
	reconnectTimer     *clock.Timer
	// Identifies the armed timer, a stale callback must not wake the loop.
	reconnectGen uint64
	// Consecutive failed attempts since the last successful subscription.
	attempt int
}

func NewSupervisor(sub TransactionSubscriber, sink EventSink, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		sub:    sub,
		sink:   sink,
		dial:   DialWebsocket,
		clock:  clock.New(),
		policy: FixedDelay(DefaultReconnectDelay),
		logger: slog.Default().With(slog.String("chain", string(sub.Name()))),
		wake:   make(chan struct{}, 1),
		state:  Disconnected,
	}

	for _, opt := range opts {
		opt.Apply(s)
	}

	return s
}

// Run connects immediately and keeps the subscription alive until ctx is
// cancelled. Run always returns a non nil error, ctx.Err() after cancellation.
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.wakeUp()
	for {
		select {
		case <-ctx.Done():
			s.stop()
			s.logger.Info("supervisor stopped")
			return ctx.Err()
		case <-s.wake:
		}
		s.connectAndServe(ctx)
	}
}

// Name returns the chain served by this supervisor.
func (s *Supervisor) Name() ChainName {
	return s.sub.Name()
}

func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReconnectScheduled reports whether a reconnect timer is pending.
func (s *Supervisor) ReconnectScheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnectScheduled
}

func (s *Supervisor) connectAndServe(ctx context.Context) {
	s.beginConnect()

	conn, err := s.dial(ctx, s.sub.Endpoint())
	if err != nil {
		s.handleClose(ctx, &TransportError{Chain: s.sub.Name(), Op: "dial", Err: err})
		return
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	// Closing the socket is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { s.closeConn(conn) })
	defer stop()

	if err := s.subscribe(conn); err != nil {
		s.closeConn(conn)
		s.handleClose(ctx, err)
		return
	}

	err = s.receive(ctx, conn)
	s.closeConn(conn)
	s.handleClose(ctx, err)
}

// beginConnect moves to Connecting and clears any pending reconnect timer.
func (s *Supervisor) beginConnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.reconnectScheduled = false
	s.state = Connecting

	select {
	case <-s.wake:
	default:
	}
}

func (s *Supervisor) subscribe(conn Conn) error {
	reqs, err := s.sub.SubscribeRequests()
	if err != nil {
		return err
	}
	for _, req := range reqs {
		if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
			return &TransportError{Chain: s.sub.Name(), Op: "subscribe", Err: err}
		}
	}

	s.mu.Lock()
	if s.conn == conn {
		s.state = Subscribed
		s.attempt = 0
	}
	s.mu.Unlock()

	s.logger.Info("connected and subscribed",
		slog.String("endpoint", s.sub.Endpoint()),
		slog.Int("subscriptions", len(reqs)),
	)
	return nil
}

// receive processes frames strictly in arrival order until the connection
// fails.
func (s *Supervisor) receive(ctx context.Context, conn Conn) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return &TransportError{Chain: s.sub.Name(), Op: "read", Err: err}
		}
		s.handleFrame(ctx, frame, s.clock.Now())
	}
}

func (s *Supervisor) handleFrame(ctx context.Context, frame []byte, receivedAt time.Time) {
	env, err := DecodeEnvelope(s.sub.Name(), frame)
	if err != nil {
		s.logger.Warn("failed to decode message", slog.Any("error", err))
		return
	}

	if env.Method != s.sub.NotificationMethod() {
		s.handleOther(env)
		return
	}

	event, err := s.sub.ParseNotification(env.Params, receivedAt)
	if err != nil {
		s.logger.Warn("failed to parse notification", slog.Any("error", err))
		return
	}
	if event == nil {
		return
	}

	if err := s.sink.Emit(ctx, event); err != nil {
		s.logger.Error("failed to emit transfer event",
			slog.String("tx_reference", event.TxReference),
			slog.Any("error", err),
		)
	}
}

func (s *Supervisor) handleOther(env *Envelope) {
	switch {
	case env.Error != nil:
		attrs := []any{slog.Any("error", env.Error)}
		if env.ID != nil {
			attrs = append(attrs, slog.Int("request_id", *env.ID))
		}
		s.logger.Warn("rpc request failed", attrs...)
	case env.IsResponse():
		s.logger.Debug("subscription confirmed",
			slog.Int("request_id", *env.ID),
			slog.String("subscription", string(env.Result)),
		)
	default:
		s.logger.Debug("ignoring message", slog.String("method", env.Method))
	}
}

// closeConn closes conn if it is still the active socket. It is safe to call
// more than once.
func (s *Supervisor) closeConn(conn Conn) {
	s.mu.Lock()
	active := s.conn == conn
	if active {
		s.state = Closing
		s.conn = nil
	}
	s.mu.Unlock()

	if !active {
		return
	}
	if err := conn.Close(); err != nil {
		s.logger.Debug("failed to close connection", slog.Any("error", err))
	}
}

// handleClose moves to Disconnected and arms the reconnect timer. At most one
// timer is pending per chain: a close reported while a reconnect is already
// scheduled changes nothing. It reports whether a timer was armed.
func (s *Supervisor) handleClose(ctx context.Context, cause error) bool {
	s.mu.Lock()
	s.state = Disconnected
	s.conn = nil
	if ctx.Err() != nil || s.reconnectScheduled {
		s.mu.Unlock()
		return false
	}

	s.attempt++
	attempt := s.attempt
	delay := s.policy.Delay(attempt)
	s.reconnectGen++
	gen := s.reconnectGen
	s.reconnectScheduled = true
	s.reconnectTimer = s.clock.AfterFunc(delay, func() { s.fireReconnect(gen) })
	s.mu.Unlock()

	s.logger.Warn("connection closed, reconnecting",
		slog.Any("error", cause),
		slog.Duration("delay", delay),
		slog.Int("attempt", attempt),
	)
	return true
}

func (s *Supervisor) fireReconnect(gen uint64) {
	s.mu.Lock()
	if !s.reconnectScheduled || gen != s.reconnectGen {
		s.mu.Unlock()
		return
	}
	s.reconnectScheduled = false
	s.reconnectTimer = nil
	s.mu.Unlock()

	s.wakeUp()
}

func (s *Supervisor) wakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Supervisor) stop() {
	s.mu.Lock()
	conn := s.conn
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.reconnectScheduled = false
	s.mu.Unlock()

	if conn != nil {
		s.closeConn(conn)
	}

	s.mu.Lock()
	s.state = Disconnected
	s.mu.Unlock()
}

type SupervisorOption interface {
	Apply(*Supervisor)
}

// WithDialer replaces the websocket dialer.
type WithDialer struct {
	Dial DialFunc
}

func (w WithDialer) Apply(s *Supervisor) {
	s.dial = w.Dial
}

// WithClock replaces the clock used for reconnect timers and receive
// timestamps.
type WithClock struct {
	Clock clock.Clock
}

func (w WithClock) Apply(s *Supervisor) {
	s.clock = w.Clock
}

type WithReconnectPolicy struct {
	Policy ReconnectPolicy
}

func (w WithReconnectPolicy) Apply(s *Supervisor) {
	s.policy = w.Policy
}
