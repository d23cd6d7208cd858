// Package rpcclient implements C1: one-shot JSON-RPC calls against the
// node, with basic-auth and typed errors (spec §4.1, §6.2). The HTTP
// POST/basic-auth/btcjson.MarshalCmd shape is grounded directly on the
// teacher's client/rpcclient.go; the functional-options constructor with
// go-playground/validator is grounded on the teacher's
// btcd/rpcclient/rpcclient.go.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/go-playground/validator/v10"
	"github.com/opentracing/opentracing-go"
	"github.com/zordinals/zordinals/log"
)

// callTimeout is the per-call transport timeout (spec §4.1: "on the
// order of 30 seconds").
const callTimeout = 30 * time.Second

type options struct {
	URL  string `validate:"required,url"`
	User string `validate:"required"`
	Pass string `validate:"required"`
}

// Option configures a Client.
type Option func(*options)

// WithURL sets the node's RPC endpoint URL.
func WithURL(url string) Option { return func(o *options) { o.URL = url } }

// WithUser sets the basic-auth username.
func WithUser(user string) Option { return func(o *options) { o.User = user } }

// WithPass sets the basic-auth password.
func WithPass(pass string) Option { return func(o *options) { o.Pass = pass } }

// Client is a one-shot JSON-RPC 1.0/2.0 client. It holds no connection
// state between calls; every Call is an independent HTTP POST.
type Client struct {
	url        string
	user       string
	pass       string
	httpClient *http.Client
}

// New builds a Client from the supplied options, validating the URL
// shape before any call is made.
func New(opts ...Option) (*Client, error) {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}
	if err := validator.New().Struct(o); err != nil {
		return nil, fmt.Errorf("zordinals: invalid rpc client options: %w", err)
	}
	return &Client{
		url:        o.URL,
		user:       o.User,
		pass:       o.Pass,
		httpClient: &http.Client{Timeout: callTimeout},
	}, nil
}

// response mirrors the teacher's client.Response: a JSON-RPC envelope
// whose Result is decoded into whatever the caller supplied.
type response struct {
	Result json.RawMessage   `json:"result"`
	Error  *btcjson.RPCError `json:"error"`
	ID     *interface{}      `json:"id"`
}

// Call sends method(params...) to the node and unmarshals the result
// into result (which may be nil if the caller doesn't need it).
func (c *Client) Call(ctx context.Context, method string, result interface{}, params ...interface{}) (callErr error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "rpcclient.Call")
	span.SetTag("rpc.method", method)
	defer func() {
		if callErr != nil {
			span.SetTag("error", true)
		}
		span.Finish()
	}()

	var body []byte
	cmd, err := btcjson.NewCmd(method, params...)
	if err == nil {
		body, err = btcjson.MarshalCmd(btcjson.RpcVersion2, 1, cmd)
	} else {
		// btcjson's typed commands reject params outside their declared
		// types (getrawtransaction's boolean verbose form, for one), so
		// such params are sent as given and left for the node to judge.
		var rpcReq *btcjson.Request
		rpcReq, err = btcjson.NewRequest(btcjson.RpcVersion2, 1, method, params)
		if err == nil {
			body, err = json.Marshal(rpcReq)
		}
	}
	if err != nil {
		return fmt.Errorf("zordinals: marshaling rpc command %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("zordinals: building rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.pass)

	log.Rpc.Debugf("call %s params=%v", method, params)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNodeUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("zordinals: reading rpc response for %s: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) == 0 {
			return &RpcError{Method: method, Params: params, Remote: http.StatusText(resp.StatusCode)}
		}
		return &RpcError{Method: method, Params: params, Remote: string(raw)}
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("zordinals: decoding rpc envelope for %s: %w", method, err)
	}
	if env.Error != nil {
		log.Rpc.Errorf("%s%v: %s", method, params, env.Error.Message)
		return &RpcError{Method: method, Params: params, Remote: env.Error.Message}
	}
	if result != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("zordinals: decoding rpc result for %s: %w", method, err)
		}
	}
	return nil
}
