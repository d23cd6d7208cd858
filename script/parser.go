package script

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/txscript"
)

// Parse decodes a hex-encoded scriptSig into its chunk list. Grounded
// on spec §4.2's opcode classification: 0x01..0x4b push that many
// bytes, OP_PUSHDATA1/2/4 take 1/2/4-byte little-endian lengths, and
// every other byte is a bare opcode (including OP_0). txscript's
// ScriptTokenizer does the length/truncation arithmetic; the push/op
// tagging below is ours, applied directly from opcode value rather
// than trusting the tokenizer's own "is this data" classification
// (which treats OP_1..OP_16 as number pushes we want as bare opcodes).
func Parse(scriptHex string) ([]Chunk, error) {
	raw, err := hex.DecodeString(scriptHex)
	if err != nil {
		return nil, parseErrorf("invalid hex: %v", err)
	}
	return ParseBytes(raw)
}

// ParseBytes is Parse without the hex decoding step.
func ParseBytes(raw []byte) ([]Chunk, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, raw)
	var chunks []Chunk
	for tokenizer.Next() {
		opcode := tokenizer.Opcode()
		if isPushOpcode(opcode) {
			chunks = append(chunks, Push(opcode, tokenizer.Data()))
		} else {
			chunks = append(chunks, Op(opcode))
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, parseErrorf("%v", err)
	}
	return chunks, nil
}

func isPushOpcode(opcode byte) bool {
	switch {
	case opcode >= 0x01 && opcode <= 0x4b:
		return true
	case opcode == txscript.OP_PUSHDATA1, opcode == txscript.OP_PUSHDATA2, opcode == txscript.OP_PUSHDATA4:
		return true
	default:
		return false
	}
}
