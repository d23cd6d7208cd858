package rpcclient

import (
	"errors"
	"fmt"
)

// ErrNodeUnreachable is returned when the transport cannot reach the
// node at all (connection refused, DNS failure, timeout). Spec §7:
// "Fatal for the current call; callers may retry at their discretion."
var ErrNodeUnreachable = errors.New("zordinals: node unreachable")

// RpcError wraps a JSON-RPC error body returned by the node. Spec §7:
// carries method, params, and the remote message.
type RpcError struct {
	Method string
	Params []interface{}
	Remote string
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("zordinals: rpc error calling %s%v: %s", e.Method, e.Params, e.Remote)
}
