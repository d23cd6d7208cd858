// Package script implements C2: decoding a raw scriptSig byte string
// into an ordered chunk list, and extracting small-integer values from
// individual chunks. The tokenizing itself rides on the teacher's
// btcd/txscript dependency (see go.mod); the chunk tagging and
// small-integer rules below follow the scan pattern used by
// envelopesFromTapScript in the retrieval pack's ordinals envelope
// decoder, adapted from witness scripts to scriptSig.
package script

// Chunk is one element of a parsed script: either a bare opcode, or a
// data push carrying the pushed bytes. IsPush discriminates the two;
// OP_0 is always a bare opcode (IsPush == false) even though it
// conceptually pushes an empty buffer, because the small-integer rule
// treats OP_0 and "push of zero bytes" differently.
type Chunk struct {
	Opcode byte
	IsPush bool
	Data   []byte
}

// Op builds a bare-opcode chunk.
func Op(opcode byte) Chunk {
	return Chunk{Opcode: opcode}
}

// Push builds a data-push chunk.
func Push(opcode byte, data []byte) Chunk {
	return Chunk{Opcode: opcode, IsPush: true, Data: data}
}
