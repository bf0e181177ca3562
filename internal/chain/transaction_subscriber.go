package chain

import (
	"context"
	"encoding/json"
	"time"
)

// TransactionSubscriber describes the chain specific half of a streaming log
// subscription. The connection itself is owned by a Supervisor.
type TransactionSubscriber interface {
	// Init validates the subscriber configuration. Errors returned by Init are
	// configuration errors and are not retried.
	Init() error

	// Endpoint returns the websocket url of the streaming RPC provider.
	Endpoint() string

	// SubscribeRequests returns the encoded subscription requests that must be
	// sent every time a connection is opened. Request ids start at 1.
	SubscribeRequests() ([][]byte, error)

	// NotificationMethod is the json-rpc method name of inbound notifications
	// carrying subscription data.
	NotificationMethod() string

	// ParseNotification reduces notification params into a TransferEvent. A nil
	// event with a nil error means the notification is not a transfer.
	ParseNotification(params json.RawMessage, receivedAt time.Time) (*TransferEvent, error)

	// Name returns the chain name of given TransactionSubscriber
	Name() ChainName
}

// EventSink receives parsed transfer events. Emit is called synchronously from
// the receive loop of a single chain, so events of one chain arrive in the order
// their frames were received.
type EventSink interface {
	Emit(ctx context.Context, event *TransferEvent) error
}

// TransferEvent is the canonical, chain tagged token transfer. Amount is kept as
// a decimal string so no precision is lost.
type TransferEvent struct {
	Chain       ChainName `json:"chain"`
	Kind        string    `json:"kind"`
	Amount      string    `json:"amount"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	// Solana transfer authority or ERC20 token contract address.
	AuthorityOrToken string    `json:"authority_or_token"`
	TxReference      string    `json:"tx_reference"`
	ObservedAt       time.Time `json:"observed_at"`
}

type ChainName string

const (
	Solana   ChainName = "SOL"
	Ethereum ChainName = "ETH"
)

// Placeholder used when a notification carries no transaction reference.
const missingTxReference = "N/A"
