package chainwalker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zordinals/zordinals/rpcclient"
	"github.com/zordinals/zordinals/script"
)

// fakeCaller is a fixture-driven stand-in for *rpcclient.Client,
// following the teacher's own inscribe_test.go style of building
// fixtures inline rather than against golden files or a live node.
type fakeCaller struct {
	txs        map[string]*rpcclient.Transaction
	blockHash  map[int64]string
	blocks     map[string]*rpcclient.Block
	rawTxCalls []string
}

func (f *fakeCaller) GetRawTransaction(_ context.Context, txid string) (*rpcclient.Transaction, error) {
	f.rawTxCalls = append(f.rawTxCalls, txid)
	tx, ok := f.txs[txid]
	if !ok {
		return nil, &rpcclient.RpcError{Method: "getrawtransaction", Remote: "no such tx"}
	}
	return tx, nil
}

func (f *fakeCaller) GetBlockHash(_ context.Context, height int64) (string, error) {
	hash, ok := f.blockHash[height]
	if !ok {
		return "", &rpcclient.RpcError{Method: "getblockhash", Remote: "height out of range"}
	}
	return hash, nil
}

func (f *fakeCaller) GetBlock(_ context.Context, hash string) (*rpcclient.Block, error) {
	b, ok := f.blocks[hash]
	if !ok {
		return nil, &rpcclient.RpcError{Method: "getblock", Remote: "no such block"}
	}
	return b, nil
}

func (f *fakeCaller) GetBlockVerboseTx(ctx context.Context, hash string) (*rpcclient.Block, error) {
	return f.GetBlock(ctx, hash)
}

func envelopeScriptHex(t *testing.T, total int, mime string, pieces map[int][]byte) string {
	t.Helper()
	chunks := []script.Chunk{
		script.EncodeData([]byte("ord")),
		script.EncodeData([]byte{byte(total)}),
		script.EncodeData([]byte(mime)),
	}
	for i := 0; i < total; i++ {
		data, ok := pieces[i]
		if !ok {
			continue
		}
		chunks = append(chunks, script.EncodeData([]byte{byte(i)}), script.EncodeData(data))
	}
	return hexEncode(script.Marshal(chunks))
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}

func TestBackwardToGenesis_SingleTx(t *testing.T) {
	genesisScript := envelopeScriptHex(t, 1, "image/png", map[int][]byte{0: []byte("P")})
	f := &fakeCaller{
		txs: map[string]*rpcclient.Transaction{
			"genesis": {
				Txid: "genesis",
				Vin:  []rpcclient.Vin{{Txid: "parent-no-envelope", Vout: 0, ScriptSigHex: genesisScript}},
			},
			"parent-no-envelope": {
				Txid: "parent-no-envelope",
				Vin:  []rpcclient.Vin{{Txid: "", ScriptSigHex: "76a914"}},
			},
		},
	}
	w := New(f)

	txid, hdr, err := w.BackwardToGenesis(context.Background(), "genesis")
	require.NoError(t, err)
	require.NotNil(t, hdr)
	assert.Equal(t, "genesis", txid)
	assert.Equal(t, 1, hdr.TotalPieces)
	assert.Equal(t, map[int][]byte{0: []byte("P")}, hdr.Pieces)
}

func TestBackwardToGenesis_WalksPastNonEnvelopeAncestors(t *testing.T) {
	genesisScript := envelopeScriptHex(t, 1, "text/plain", map[int][]byte{0: []byte("hi")})
	f := &fakeCaller{
		txs: map[string]*rpcclient.Transaction{
			"leaf": {
				Txid: "leaf",
				Vin:  []rpcclient.Vin{{Txid: "middle", ScriptSigHex: "76a914"}},
			},
			"middle": {
				Txid: "middle",
				Vin:  []rpcclient.Vin{{Txid: "genesis", ScriptSigHex: "76a914"}},
			},
			"genesis": {
				Txid: "genesis",
				Vin:  []rpcclient.Vin{{Txid: "", ScriptSigHex: genesisScript}},
			},
		},
	}
	w := New(f)

	txid, hdr, err := w.BackwardToGenesis(context.Background(), "leaf")
	require.NoError(t, err)
	require.NotNil(t, hdr)
	assert.Equal(t, "genesis", txid)
}

func TestBackwardToGenesis_NoInputsIsTerminalWithNullEnvelope(t *testing.T) {
	f := &fakeCaller{
		txs: map[string]*rpcclient.Transaction{
			"orphan": {Txid: "orphan", Vin: nil},
		},
	}
	w := New(f)

	txid, hdr, err := w.BackwardToGenesis(context.Background(), "orphan")
	require.NoError(t, err)
	assert.Nil(t, hdr)
	assert.Equal(t, "orphan", txid)
}

func TestBackwardToGenesis_EarlierEnvelopeWins(t *testing.T) {
	// Two concatenated envelope transactions: "later" carries an envelope
	// whose parent "earlier" also carries one, so genesis is "earlier".
	laterScript := envelopeScriptHex(t, 1, "image/png", map[int][]byte{0: []byte("X")})
	earlierScript := envelopeScriptHex(t, 1, "image/png", map[int][]byte{0: []byte("Y")})
	f := &fakeCaller{
		txs: map[string]*rpcclient.Transaction{
			"later": {
				Txid: "later",
				Vin:  []rpcclient.Vin{{Txid: "earlier", ScriptSigHex: laterScript}},
			},
			"earlier": {
				Txid: "earlier",
				Vin:  []rpcclient.Vin{{Txid: "", ScriptSigHex: earlierScript}},
			},
		},
	}
	w := New(f)

	txid, hdr, err := w.BackwardToGenesis(context.Background(), "later")
	require.NoError(t, err)
	require.NotNil(t, hdr)
	assert.Equal(t, "earlier", txid)
	assert.Equal(t, map[int][]byte{0: []byte("Y")}, hdr.Pieces)
}

func TestForwardSpender_FindsSpenderInLaterBlock(t *testing.T) {
	f := &fakeCaller{
		blockHash: map[int64]string{100: "h100", 101: "h101"},
		blocks: map[string]*rpcclient.Block{
			"h100": {Hash: "h100", Height: 100, Txs: []rpcclient.Transaction{
				{Txid: "unrelated", Vin: []rpcclient.Vin{{Txid: "other", Vout: 0}}},
			}},
			"h101": {Hash: "h101", Height: 101, Txs: []rpcclient.Transaction{
				{Txid: "spender", Vin: []rpcclient.Vin{{Txid: "genesis", Vout: 0}}},
			}},
		},
	}
	w := New(f, WithMaxDepth(10), WithBlockPacing(0))

	res, err := w.ForwardSpender(context.Background(), "genesis", 0, 100)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "spender", res.SpenderTxid)
	assert.Equal(t, int64(101), res.Height)
	assert.Equal(t, 0, res.VinIndex)
}

func TestForwardSpender_NoSpenderInWindow(t *testing.T) {
	f := &fakeCaller{
		blockHash: map[int64]string{100: "h100"},
		blocks: map[string]*rpcclient.Block{
			"h100": {Hash: "h100", Height: 100, Txs: nil},
		},
	}
	w := New(f, WithMaxDepth(1), WithBlockPacing(0))

	res, err := w.ForwardSpender(context.Background(), "genesis", 0, 100)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestForwardSpender_BlockFetchFailureTerminatesWithoutError(t *testing.T) {
	f := &fakeCaller{blockHash: map[int64]string{}}
	w := New(f, WithMaxDepth(5), WithBlockPacing(0))

	res, err := w.ForwardSpender(context.Background(), "genesis", 0, 100)
	require.NoError(t, err)
	assert.Nil(t, res)
}
