package rpcclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/zordinals/zordinals/log"
)

// GetRawTransaction fetches txid and projects it into a Transaction.
// Spec §4.1 mandates a three-tier fallback: verbose=1, then verbose=true
// (some nodes only accept the boolean form), then raw hex decoded
// locally with wire.MsgTx. Each tier is only attempted if the previous
// one returned an RpcError (a genuine transport failure short-circuits
// immediately, matching ErrNodeUnreachable's "fatal for this call").
func (c *Client) GetRawTransaction(ctx context.Context, txid string) (*Transaction, error) {
	var res btcjson.TxRawResult
	err := c.Call(ctx, "getrawtransaction", &res, txid, 1)
	if err == nil {
		return txRawResultToTransaction(res), nil
	}
	if _, ok := asRpcError(err); !ok {
		return nil, err
	}
	log.Rpc.Debugf("getrawtransaction verbose=1 failed for %s, retrying verbose=true: %v", txid, err)

	err = c.Call(ctx, "getrawtransaction", &res, txid, true)
	if err == nil {
		return txRawResultToTransaction(res), nil
	}
	if _, ok := asRpcError(err); !ok {
		return nil, err
	}
	log.Rpc.Debugf("getrawtransaction verbose=true failed for %s, falling back to raw hex: %v", txid, err)

	var rawHex string
	if err := c.Call(ctx, "getrawtransaction", &rawHex, txid, 0); err != nil {
		return nil, err
	}
	return decodeRawTransaction(txid, rawHex)
}

// asRpcError reports whether err is (or wraps) an *RpcError, i.e. the
// node answered but rejected the call shape, as opposed to the
// transport failing outright.
func asRpcError(err error) (*RpcError, bool) {
	var rpcErr *RpcError
	ok := errors.As(err, &rpcErr)
	return rpcErr, ok
}

func txRawResultToTransaction(res btcjson.TxRawResult) *Transaction {
	tx := &Transaction{
		Txid:      res.Txid,
		BlockHash: res.BlockHash,
		Vin:       make([]Vin, len(res.Vin)),
		Vout:      make([]Vout, len(res.Vout)),
	}
	for i, vin := range res.Vin {
		v := Vin{Vout: vin.Vout}
		if !vin.IsCoinBase() {
			v.Txid = vin.Txid
		}
		if vin.ScriptSig != nil {
			v.ScriptSigHex = vin.ScriptSig.Hex
		}
		tx.Vin[i] = v
	}
	for i, vout := range res.Vout {
		tx.Vout[i] = Vout{N: vout.N, ScriptPubKeyHex: vout.ScriptPubKey.Hex}
	}
	return tx
}

// decodeRawTransaction decodes a raw transaction hex without any node
// assistance, for the last fallback tier of GetRawTransaction.
func decodeRawTransaction(txid, rawHex string) (*Transaction, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("zordinals: decoding raw tx hex for %s: %w", txid, err)
	}
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("zordinals: deserializing raw tx %s: %w", txid, err)
	}

	tx := &Transaction{
		Txid: txid,
		Vin:  make([]Vin, len(msgTx.TxIn)),
		Vout: make([]Vout, len(msgTx.TxOut)),
	}
	for i, in := range msgTx.TxIn {
		v := Vin{
			Vout:         in.PreviousOutPoint.Index,
			ScriptSigHex: hex.EncodeToString(in.SignatureScript),
		}
		if !isZeroHash(in.PreviousOutPoint.Hash) {
			v.Txid = in.PreviousOutPoint.Hash.String()
		}
		tx.Vin[i] = v
	}
	for i, out := range msgTx.TxOut {
		tx.Vout[i] = Vout{N: uint32(i), ScriptPubKeyHex: hex.EncodeToString(out.PkScript)}
	}
	return tx, nil
}

func isZeroHash(h chainhash.Hash) bool {
	var zero chainhash.Hash
	return h == zero
}

// GetBlockHash returns the block hash at height.
func (c *Client) GetBlockHash(ctx context.Context, height int64) (string, error) {
	var hash chainhash.Hash
	if err := c.Call(ctx, "getblockhash", &hash, height); err != nil {
		return "", err
	}
	return hash.String(), nil
}

// GetBlock fetches the block at hash verbose=1 (header and txid list
// only), enough for the reconstructor to resolve a genesis
// transaction's block height.
func (c *Client) GetBlock(ctx context.Context, hash string) (*Block, error) {
	var res btcjson.GetBlockVerboseResult
	if err := c.Call(ctx, "getblock", &res, hash, 1); err != nil {
		return nil, err
	}
	return &Block{Hash: res.Hash, Height: res.Height}, nil
}

// GetBlockVerboseTx fetches the block at hash verbose=2 (full
// transaction bodies), used by C4's forward spender search to scan a
// block's transactions for one spending a known outpoint without a
// second round trip per transaction.
func (c *Client) GetBlockVerboseTx(ctx context.Context, hash string) (*Block, error) {
	var res btcjson.GetBlockVerboseTxResult
	if err := c.Call(ctx, "getblock", &res, hash, 2); err != nil {
		return nil, err
	}
	block := &Block{Hash: res.Hash, Height: res.Height, Txs: make([]Transaction, len(res.Tx))}
	for i, tx := range res.Tx {
		block.Txs[i] = *txRawResultToTransaction(tx)
	}
	return block, nil
}
