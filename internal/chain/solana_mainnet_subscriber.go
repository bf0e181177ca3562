package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/mr-tron/base58"
)

const (
	solanaLogsSubscribe    = "logsSubscribe"
	solanaLogsNotification = "logsNotification"
)

// DefaultSolanaWatchedAddresses are the token mints watched when no other
// addresses are configured.
var DefaultSolanaWatchedAddresses = []string{
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	"8JnNWJ46yfdq8sKgT1Lk4G7VWkAA8Rhh7LhqgJ6WY41G",
	"So11111111111111111111111111111111111111112",
}

func NewSolanaMainnetSubscriber(rpcUrl string, watched ...string) *solanaMainnetSubscriber {
	if len(watched) == 0 {
		watched = DefaultSolanaWatchedAddresses
	}
	return &solanaMainnetSubscriber{
		rpcUrl:  rpcUrl,
		watched: watched,
	}
}

var _ TransactionSubscriber = (*solanaMainnetSubscriber)(nil)

type solanaMainnetSubscriber struct {
	rpcUrl string

	watched []string
	// Validated form of watched, populated by Init.
	mentions []common.PublicKey
}

func (s *solanaMainnetSubscriber) Init() error {
	if err := validateWebsocketUrl(s.rpcUrl); err != nil {
		return fmt.Errorf("solana rpc url: %w", err)
	}
	if len(s.watched) == 0 {
		return fmt.Errorf("no solana addresses to watch")
	}

	s.mentions = make([]common.PublicKey, 0, len(s.watched))
	for _, w := range s.watched {
		pk, err := validateSolanaWallet(w)
		if err != nil {
			return fmt.Errorf("watched address %q: %w", w, err)
		}
		s.mentions = append(s.mentions, pk)
	}

	slog.Info("initialized solana mainnet subscriber",
		slog.String("rpc_url", s.rpcUrl),
		slog.Int("watched_addresses", len(s.mentions)),
	)

	return nil
}

func (s *solanaMainnetSubscriber) Endpoint() string {
	return s.rpcUrl
}

// SubscribeRequests returns one logsSubscribe request per watched address with
// ids 1..n.
func (s *solanaMainnetSubscriber) SubscribeRequests() ([][]byte, error) {
	reqs := make([][]byte, 0, len(s.mentions))
	for i, pk := range s.mentions {
		req, err := encodeSolanaLogsSubscribe(i+1, pk.ToBase58())
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
		slog.Info("subscribing to solana logs",
			slog.String("chain", string(Solana)),
			slog.String("address", pk.ToBase58()),
			slog.Int("request_id", i+1),
		)
	}
	return reqs, nil
}

func (s *solanaMainnetSubscriber) NotificationMethod() string {
	return solanaLogsNotification
}

type solanaLogsNotificationParams struct {
	Result struct {
		Value *struct {
			Signature string          `json:"signature"`
			Logs      json.RawMessage `json:"logs"`
		} `json:"value"`
	} `json:"result"`
}

func (s *solanaMainnetSubscriber) ParseNotification(params json.RawMessage, receivedAt time.Time) (*TransferEvent, error) {
	n := solanaLogsNotificationParams{}
	if err := json.Unmarshal(params, &n); err != nil {
		return nil, &ParseError{Chain: Solana, Err: err}
	}
	if n.Result.Value == nil {
		return nil, &ParseError{Chain: Solana, Err: fmt.Errorf("notification has no result value")}
	}

	// Anything but an array of log lines is not a transfer.
	raw := bytes.TrimSpace(n.Result.Value.Logs)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil
	}
	logs := []string{}
	if err := json.Unmarshal(raw, &logs); err != nil {
		return nil, &ParseError{Chain: Solana, Err: fmt.Errorf("decoding logs: %w", err)}
	}

	event := ParseSolanaTransfer(logs)
	if event == nil {
		return nil, nil
	}

	event.TxReference = n.Result.Value.Signature
	if event.TxReference == "" {
		event.TxReference = missingTxReference
	}
	event.ObservedAt = receivedAt

	return event, nil
}

func (s *solanaMainnetSubscriber) Name() ChainName {
	return Solana
}

func encodeSolanaLogsSubscribe(id int, address string) ([]byte, error) {
	return EncodeSubscribe(id, solanaLogsSubscribe,
		map[string][]string{"mentions": {address}},
		map[string]rpc.Commitment{"commitment": rpc.CommitmentConfirmed},
	)
}

func validateSolanaWallet(wallet string) (common.PublicKey, error) {
	b, err := base58.Decode(wallet)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("invalid wallet address: %w", err)
	}
	if len(b) != common.PublicKeyLength {
		return common.PublicKey{}, fmt.Errorf("invalid wallet address: expected %d bytes, got %d", common.PublicKeyLength, len(b))
	}

	return common.PublicKeyFromBytes(b), nil
}
