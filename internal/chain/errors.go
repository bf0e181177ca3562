package chain

import "fmt"

// DecodeError is returned for inbound frames that are not valid json-rpc
// messages. The receive loop logs it and keeps going.
type DecodeError struct {
	Chain ChainName
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode frame: %v", e.Chain, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError is returned when a well formed notification cannot be reduced to a
// TransferEvent, for example a malformed amount encoding.
type ParseError struct {
	Chain ChainName
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse notification: %v", e.Chain, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError wraps connection level failures: dial, write and read errors.
// It always ends the current connection and schedules a reconnect.
type TransportError struct {
	Chain ChainName
	Op    string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Chain, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
