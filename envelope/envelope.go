// Package envelope implements C3: recognizing the "ord" envelope inside a
// parsed scriptSig chunk list and extracting (totalPieces, mimeType,
// piece-index -> bytes) from it, plus the continuation form used by
// follow-up transactions in a spender chain (spec §4.3). Grounded on the
// same chunk-scanning shape the teacher's inscription/index/envelope.go
// uses to walk a witness's tokenized instructions pair by pair, adapted
// from taproot witnesses to plain scriptSig pushes and from the
// tag/field grammar of BIP-style envelopes to this system's flatter
// (index, data) pair grammar.
package envelope

import (
	"github.com/zordinals/zordinals/script"
)

// ordMarker is the literal three-byte push that opens every envelope.
var ordMarker = []byte("ord")

// Header is the decoded genesis envelope of spec §4.3 "Envelope mode":
// the declared piece count, mime type, and whatever (index, data) pairs
// were present in the genesis transaction's scriptSig.
type Header struct {
	TotalPieces int
	MimeType    string
	Pieces      map[int][]byte
}

// DecodeEnvelope implements spec §4.3's envelope mode. It is total over
// arbitrary chunk lists: any malformed input yields ok == false rather
// than an error, since callers walk many unrelated transactions and
// must not abort on the first one that isn't an inscription.
func DecodeEnvelope(chunks []script.Chunk) (hdr *Header, ok bool) {
	if len(chunks) < 3 {
		return nil, false
	}
	if !chunks[0].IsPush || string(chunks[0].Data) != string(ordMarker) {
		return nil, false
	}
	total, totalOk := script.SmallInt(chunks[1])
	if !totalOk || total < 1 {
		return nil, false
	}
	if !chunks[2].IsPush {
		return nil, false
	}
	mime := string(chunks[2].Data)

	pieces := readPairs(chunks[3:])
	return &Header{TotalPieces: total, MimeType: mime, Pieces: pieces}, true
}

// readPairs ingests chunks two at a time as (index, data) pairs, per
// spec §4.3: "Pair ingestion stops when either element is not of the
// expected form or the chunk list ends." Unlike piece-dropping in
// continuation mode, no range check happens here; the caller (genesis
// decode) has no expectedTotal yet to drop against - DecodeEnvelope's
// own total is itself one of the values being decoded.
func readPairs(chunks []script.Chunk) map[int][]byte {
	pieces := make(map[int][]byte)
	for i := 0; i+1 < len(chunks); i += 2 {
		idx, ok := script.SmallInt(chunks[i])
		if !ok {
			break
		}
		data := chunks[i+1]
		if !data.IsPush {
			break
		}
		if _, exists := pieces[idx]; !exists {
			pieces[idx] = data.Data
		}
	}
	return pieces
}

// DecodeContinuation implements spec §4.3's continuation mode for a
// follow-up transaction's scriptSig. expectedTotal/expectedMime are the
// hints carried forward from genesis (or from the previous
// continuation); they are overridden when the continuation repeats a
// full envelope. Pieces whose index falls outside [0, total) are
// silently dropped. ok is false when no valid piece was extracted at
// all, per spec's "null result" requirement.
func DecodeContinuation(chunks []script.Chunk, expectedTotal int, expectedMime string) (pieces map[int][]byte, total int, mime string, ok bool) {
	total, mime = expectedTotal, expectedMime

	rest := chunks
	if hdr, envOk := DecodeEnvelope(chunks); envOk {
		total, mime = hdr.TotalPieces, hdr.MimeType
		rest = chunks[3:]
	}

	raw := readPairs(rest)
	pieces = make(map[int][]byte, len(raw))
	for idx, data := range raw {
		if idx < 0 || idx >= total {
			continue
		}
		pieces[idx] = data
	}
	if len(pieces) == 0 {
		return nil, total, mime, false
	}
	return pieces, total, mime, true
}
