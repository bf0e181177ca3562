package chain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	ethereumSubscribe    = "eth_subscribe"
	ethereumSubscription = "eth_subscription"

	ethereumLogsSubscription = "logs"
)

func NewEthereumMainnetSubscriber(rpcUrl string, opts ...EthereumMainnetSubscriberOption) *ethereumMainnetSubscriber {
	e := &ethereumMainnetSubscriber{
		rpcUrl: rpcUrl,
	}

	for _, opt := range opts {
		opt.Apply(e)
	}

	return e
}

var _ TransactionSubscriber = (*ethereumMainnetSubscriber)(nil)

type ethereumMainnetSubscriber struct {
	rpcUrl string

	// Raw contract addresses from options, validated in Init. Empty means the
	// subscription is unfiltered.
	contracts []string
	filter    *ethereumLogFilter
}

// ethereumLogFilter is the optional second eth_subscribe("logs") parameter.
type ethereumLogFilter struct {
	Address []common.Address `json:"address,omitempty"`
	Topics  [][]common.Hash  `json:"topics,omitempty"`
}

func (e *ethereumMainnetSubscriber) Init() error {
	if err := validateWebsocketUrl(e.rpcUrl); err != nil {
		return fmt.Errorf("ethereum rpc url: %w", err)
	}

	if len(e.contracts) > 0 {
		f := &ethereumLogFilter{
			Topics: [][]common.Hash{{TransferEventSignature}},
		}
		for _, c := range e.contracts {
			address, err := validateEvmWallet(c)
			if err != nil {
				return fmt.Errorf("watched contract %q: %w", c, err)
			}
			f.Address = append(f.Address, address)
		}
		e.filter = f
	}

	slog.Info("initialized ethereum mainnet subscriber",
		slog.String("rpc_url", e.rpcUrl),
		slog.Int("watched_contracts", len(e.contracts)),
	)

	return nil
}

func (e *ethereumMainnetSubscriber) Endpoint() string {
	return e.rpcUrl
}

// SubscribeRequests returns the single eth_subscribe request covering all
// watched criteria.
func (e *ethereumMainnetSubscriber) SubscribeRequests() ([][]byte, error) {
	req, err := encodeEthereumLogsSubscribe(1, e.filter)
	if err != nil {
		return nil, err
	}
	return [][]byte{req}, nil
}

func (e *ethereumMainnetSubscriber) NotificationMethod() string {
	return ethereumSubscription
}

type ethereumSubscriptionParams struct {
	Subscription string       `json:"subscription"`
	Result       *EthereumLog `json:"result"`
}

func (e *ethereumMainnetSubscriber) ParseNotification(params json.RawMessage, receivedAt time.Time) (*TransferEvent, error) {
	p := ethereumSubscriptionParams{}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &ParseError{Chain: Ethereum, Err: err}
	}

	event, err := ParseEthereumTransfer(p.Result)
	if err != nil || event == nil {
		return nil, err
	}
	event.ObservedAt = receivedAt

	return event, nil
}

func (e *ethereumMainnetSubscriber) Name() ChainName {
	return Ethereum
}

type EthereumMainnetSubscriberOption interface {
	Apply(*ethereumMainnetSubscriber)
}

// WithWatchedContracts scopes the logs subscription to Transfer logs emitted by
// the given token contracts.
type WithWatchedContracts struct {
	Contracts []string
}

func (w WithWatchedContracts) Apply(e *ethereumMainnetSubscriber) {
	e.contracts = w.Contracts
}

func encodeEthereumLogsSubscribe(id int, filter *ethereumLogFilter) ([]byte, error) {
	if filter == nil {
		return EncodeSubscribe(id, ethereumSubscribe, ethereumLogsSubscription)
	}
	return EncodeSubscribe(id, ethereumSubscribe, ethereumLogsSubscription, filter)
}

func validateEvmWallet(wallet string) (common.Address, error) {
	if !common.IsHexAddress(wallet) {
		return common.Address{}, fmt.Errorf("invalid ethereum wallet address")
	}
	return common.HexToAddress(wallet), nil
}
