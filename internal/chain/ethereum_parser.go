package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const Erc20TransferKind = "ERC20_TRANSFER"

// TransferEventSignature is topic0 of Transfer(address,address,uint256) logs.
var TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// EthereumLog is the log record delivered by eth_subscription notifications.
// Fields are kept as strings, numeric conversion happens in
// ParseEthereumTransfer only.
type EthereumLog struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	TransactionHash string   `json:"transactionHash,omitempty"`
	BlockNumber     string   `json:"blockNumber,omitempty"`
	LogIndex        string   `json:"logIndex,omitempty"`
	Removed         bool     `json:"removed,omitempty"`
}

// ParseEthereumTransfer reduces an ERC20 Transfer log to a TransferEvent. Logs
// of any other event, and Transfer logs without both indexed addresses, yield
// (nil, nil). A malformed address topic or amount returns a *ParseError.
func ParseEthereumTransfer(log *EthereumLog) (*TransferEvent, error) {
	if log == nil || len(log.Topics) == 0 {
		return nil, nil
	}
	if !strings.EqualFold(log.Topics[0], TransferEventSignature.Hex()) {
		return nil, nil
	}
	if len(log.Topics) < 3 {
		return nil, nil
	}

	source, err := topicAddress(log.Topics[1])
	if err != nil {
		return nil, &ParseError{Chain: Ethereum, Err: fmt.Errorf("source topic: %w", err)}
	}
	destination, err := topicAddress(log.Topics[2])
	if err != nil {
		return nil, &ParseError{Chain: Ethereum, Err: fmt.Errorf("destination topic: %w", err)}
	}

	amount, err := decodeUint(log.Data)
	if err != nil {
		return nil, &ParseError{Chain: Ethereum, Err: fmt.Errorf("amount %q: %w", log.Data, err)}
	}

	txRef := log.TransactionHash
	if txRef == "" {
		txRef = missingTxReference
	}

	return &TransferEvent{
		Chain:            Ethereum,
		Kind:             Erc20TransferKind,
		Amount:           amount.String(),
		Source:           source,
		Destination:      destination,
		AuthorityOrToken: log.Address,
		TxReference:      txRef,
	}, nil
}

// topicAddress returns the last 20 bytes of an indexed address topic as a 0x
// prefixed hex string.
func topicAddress(topic string) (string, error) {
	if len(topic) < 2*common.AddressLength {
		return "", fmt.Errorf("topic %q is too short", topic)
	}
	addr := "0x" + topic[len(topic)-2*common.AddressLength:]
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("topic %q is not hex encoded", topic)
	}
	return addr, nil
}

// decodeUint decodes 0x prefixed big endian data of arbitrary length.
func decodeUint(data string) (*big.Int, error) {
	b, err := hexutil.Decode(data)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("empty data")
	}
	return new(big.Int).SetBytes(b), nil
}
