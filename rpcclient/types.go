package rpcclient

// Transaction is the minimal projection of a node transaction the rest
// of the module needs (spec §3): just enough of vin/vout to walk the
// spender chain and pull scriptSig/scriptPubKey bytes for C2.
type Transaction struct {
	Txid      string
	BlockHash string
	Vin       []Vin
	Vout      []Vout
}

// Vin is one transaction input.
type Vin struct {
	Txid         string
	Vout         uint32
	ScriptSigHex string
}

// Vout is one transaction output.
type Vout struct {
	N               uint32
	ScriptPubKeyHex string
}

// IsCoinbase reports whether this is a coinbase input (no prior txid).
func (v Vin) IsCoinbase() bool {
	return v.Txid == ""
}

// Block is the minimal projection of a node block (spec §3): header
// fields needed to walk forward by height, plus the full tx list when
// fetched verbose=2.
type Block struct {
	Hash   string
	Height int64
	Txs    []Transaction
}
