// Package chainwalker implements C4: the backward walk from an arbitrary
// txid to an inscription's genesis, and the forward scan that finds the
// transaction spending a given (txid, vout) within a bounded block-height
// window (spec §4.4). Both walks are written iteratively with explicit
// loop state, per spec §9's note that the backward/forward walks "form a
// mutually recursive pair" best encoded without real recursion so long
// spender chains don't grow the call stack.
package chainwalker

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"github.com/zordinals/zordinals/envelope"
	"github.com/zordinals/zordinals/log"
	"github.com/zordinals/zordinals/rpcclient"
	"github.com/zordinals/zordinals/script"
)

// Caller is the subset of rpcclient.Client the walker needs. It exists
// so tests can drive the walk against fixtures instead of a live node;
// *rpcclient.Client satisfies it directly.
type Caller interface {
	GetRawTransaction(ctx context.Context, txid string) (*rpcclient.Transaction, error)
	GetBlockHash(ctx context.Context, height int64) (string, error)
	GetBlock(ctx context.Context, hash string) (*rpcclient.Block, error)
	GetBlockVerboseTx(ctx context.Context, hash string) (*rpcclient.Block, error)
}

// Walker holds the RPC caller and the forward-scan tunables.
type Walker struct {
	caller      Caller
	maxDepth    int64
	blockPacing time.Duration
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxDepth overrides the default forward-scan window (spec §4.4:
// "maxDepth default is 2000 blocks; tunable").
func WithMaxDepth(depth int64) Option {
	return func(w *Walker) { w.maxDepth = depth }
}

// WithBlockPacing overrides the ~1s pause between block fetches (spec
// §4.4, §5). Tests pass 0 to run the window instantly.
func WithBlockPacing(d time.Duration) Option {
	return func(w *Walker) { w.blockPacing = d }
}

const defaultMaxDepth = 2000
const defaultBlockPacing = time.Second

// New builds a Walker against caller.
func New(caller Caller, opts ...Option) *Walker {
	w := &Walker{caller: caller, maxDepth: defaultMaxDepth, blockPacing: defaultBlockPacing}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MaxDepth reports the configured forward-scan window.
func (w *Walker) MaxDepth() int64 { return w.maxDepth }

// SpenderResult is the outcome of a successful ForwardSpender search.
type SpenderResult struct {
	SpenderTxid string
	VinIndex    int
	Height      int64
}

// BackwardToGenesis implements spec §4.4's backward walk. It returns the
// genesis txid and its decoded envelope header. A nil header with a nil
// error means the walk reached a transaction with no inputs (or no
// vin[0].scriptSig) without ever finding an envelope; the caller (C5)
// treats that as NoInscription. A non-nil error means an RPC call
// failed outright - fatal per spec §7, "fatal when it occurs on the
// initial genesis fetch."
func (w *Walker) BackwardToGenesis(ctx context.Context, startTxid string) (genesisTxid string, hdr *envelope.Header, err error) {
	cur := startTxid
	for {
		tx, err := w.caller.GetRawTransaction(ctx, cur)
		if err != nil {
			return "", nil, err
		}
		if len(tx.Vin) == 0 || tx.Vin[0].ScriptSigHex == "" {
			return cur, nil, nil
		}

		curHdr, ok := decodeEnvelopeHex(tx.Vin[0].ScriptSigHex)
		parentTxid := tx.Vin[0].Txid
		if !ok {
			if parentTxid == "" {
				return cur, nil, nil
			}
			cur = parentTxid
			continue
		}

		// cur carries an envelope. Per spec §4.4, cur is genesis unless
		// its parent also carries one, in which case genesis is earlier
		// still and we keep walking backward from the parent.
		if parentTxid == "" {
			return cur, curHdr, nil
		}
		parentTx, err := w.caller.GetRawTransaction(ctx, parentTxid)
		if err != nil {
			return "", nil, err
		}
		if len(parentTx.Vin) == 0 || parentTx.Vin[0].ScriptSigHex == "" {
			return cur, curHdr, nil
		}
		if _, parentOk := decodeEnvelopeHex(parentTx.Vin[0].ScriptSigHex); !parentOk {
			return cur, curHdr, nil
		}
		cur = parentTxid
	}
}

// decodeEnvelopeHex parses scriptHex and attempts an envelope decode,
// swallowing any ScriptParseError per spec §4.3/§7: a malformed script
// just means "no envelope here," never an aborted walk.
func decodeEnvelopeHex(scriptHex string) (*envelope.Header, bool) {
	chunks, err := script.Parse(scriptHex)
	if err != nil {
		log.Walk.Debugf("script parse error, treating as non-envelope: %v", err)
		return nil, false
	}
	return envelope.DecodeEnvelope(chunks)
}

// ForwardSpender implements spec §4.4's forward spender search: scan
// blocks startHeight..startHeight+maxDepth in increasing order for the
// first transaction input consuming (txid, vout). A nil result with a
// nil error means no spender was found in the window - including the
// case where a block fetch failed partway through, which per spec §4.4
// "terminates the forward search" rather than propagating an error, so
// the caller can still emit a partial reconstruction.
func (w *Walker) ForwardSpender(ctx context.Context, txid string, vout uint32, startHeight int64) (*SpenderResult, error) {
	if startHeight < 0 {
		return nil, nil
	}
	var tk ticker.Ticker
	if w.blockPacing > 0 {
		tk = ticker.New(w.blockPacing)
		tk.Resume()
		defer tk.Stop()
	}

	end := startHeight + w.maxDepth
	for h := startHeight; h < end; h++ {
		if h > startHeight && w.blockPacing > 0 {
			select {
			case <-tk.Ticks():
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		hash, err := w.caller.GetBlockHash(ctx, h)
		if err != nil {
			log.Walk.Debugf("forward scan stopped at height %d: %v", h, err)
			return nil, nil
		}
		block, err := w.caller.GetBlockVerboseTx(ctx, hash)
		if err != nil {
			log.Walk.Debugf("forward scan stopped fetching block %s: %v", hash, err)
			return nil, nil
		}
		if res := scanBlockForSpender(block, txid, vout); res != nil {
			return res, nil
		}
	}
	return nil, nil
}

func scanBlockForSpender(block *rpcclient.Block, txid string, vout uint32) *SpenderResult {
	for _, tx := range block.Txs {
		for vi, in := range tx.Vin {
			if in.Txid == txid && in.Vout == vout {
				return &SpenderResult{SpenderTxid: tx.Txid, VinIndex: vi, Height: block.Height}
			}
		}
	}
	return nil
}
