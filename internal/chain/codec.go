package chain

import (
	"encoding/json"
	"errors"
	"fmt"
)

const jsonRpcVersion = "2.0"

// SubscriptionRequest is an outbound json-rpc subscription call.
type SubscriptionRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Envelope is the generic shape of an inbound json-rpc message before chain
// specific interpretation. Notifications carry Method and Params, responses to
// our own requests carry ID and either Result or Error.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RpcError       `json:"error,omitempty"`
}

// RpcError is the json-rpc error object.
type RpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsResponse reports whether the envelope answers one of our requests.
func (e *Envelope) IsResponse() bool {
	return e.Method == "" && e.ID != nil
}

// EncodeSubscribe encodes a single subscription request.
func EncodeSubscribe(id int, method string, params ...any) ([]byte, error) {
	if params == nil {
		params = []any{}
	}
	b, err := json.Marshal(SubscriptionRequest{
		JSONRPC: jsonRpcVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}
	return b, nil
}

var errNotAnObject = errors.New("frame is not a json object")

// DecodeEnvelope decodes a raw inbound frame. Malformed frames return a
// *DecodeError.
func DecodeEnvelope(chain ChainName, frame []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(frame, env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			err = errNotAnObject
		}
		return nil, &DecodeError{Chain: chain, Err: err}
	}
	return env, nil
}
