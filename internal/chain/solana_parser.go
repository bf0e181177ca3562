package chain

import "strings"

const (
	SolanaTransferKind = "Transfer"

	solanaTransferInstruction = "Instruction: Transfer"
)

// solanaLogFields maps program log markers to the TransferEvent field they
// set. Every marker is checked against every line.
var solanaLogFields = []struct {
	marker string
	set    func(e *TransferEvent, value string)
}{
	{"amount:", func(e *TransferEvent, v string) { e.Amount = v }},
	{"source:", func(e *TransferEvent, v string) { e.Source = v }},
	{"destination:", func(e *TransferEvent, v string) { e.Destination = v }},
	{"authority:", func(e *TransferEvent, v string) { e.AuthorityOrToken = v }},
}

// ParseSolanaTransfer scans the program logs of one transaction in order and
// returns a transfer event when both the transfer instruction and a destination
// were found. When a marker appears more than once the last line wins.
// ParseSolanaTransfer returns nil for every other log set.
func ParseSolanaTransfer(logs []string) *TransferEvent {
	if len(logs) == 0 {
		return nil
	}

	e := TransferEvent{Chain: Solana}
	for _, line := range logs {
		if strings.Contains(line, solanaTransferInstruction) {
			e.Kind = SolanaTransferKind
		}
		for _, f := range solanaLogFields {
			if _, value, ok := strings.Cut(line, f.marker); ok {
				f.set(&e, strings.TrimSpace(value))
			}
		}
	}

	if e.Kind == "" || e.Destination == "" {
		return nil
	}
	return &e
}
