package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zordinals/zordinals/script"
)

// buildEnvelope constructs a synthetic genesis envelope's chunk list for
// (total, mime, pieces), mirroring the encode side of spec §8's
// "Envelope encode->decode" round-trip law.
func buildEnvelope(total int, mime string, pieces map[int][]byte) []script.Chunk {
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
	return chunks
}

func TestDecodeEnvelope_RoundTrip(t *testing.T) {
	pieces := map[int][]byte{0: []byte("AAAA"), 1: []byte("BBBB"), 2: []byte("CCCC")}
	chunks := buildEnvelope(3, "image/png", pieces)

	hdr, ok := DecodeEnvelope(chunks)
	require.True(t, ok)
	assert.Equal(t, 3, hdr.TotalPieces)
	assert.Equal(t, "image/png", hdr.MimeType)
	assert.Equal(t, pieces, hdr.Pieces)
}

func TestDecodeEnvelope_RejectsMissingMarker(t *testing.T) {
	chunks := []script.Chunk{
		script.EncodeData([]byte("xyz")),
		script.EncodeData([]byte{1}),
		script.EncodeData([]byte("image/png")),
	}
	_, ok := DecodeEnvelope(chunks)
	assert.False(t, ok)
}

func TestDecodeEnvelope_TooShort(t *testing.T) {
	_, ok := DecodeEnvelope([]script.Chunk{script.EncodeData([]byte("ord"))})
	assert.False(t, ok)
}

func TestDecodeEnvelope_StopsAtMalformedPair(t *testing.T) {
	chunks := []script.Chunk{
		script.EncodeData([]byte("ord")),
		script.EncodeData([]byte{2}),
		script.EncodeData([]byte("text/plain")),
		script.EncodeData([]byte{0}),
		script.EncodeData([]byte("hello")),
		script.Op(0x76), // OP_DUP: not a valid index chunk, ingestion stops here
	}
	hdr, ok := DecodeEnvelope(chunks)
	require.True(t, ok)
	assert.Equal(t, map[int][]byte{0: []byte("hello")}, hdr.Pieces)
}

func TestDecodeContinuation_PlainPairs(t *testing.T) {
	chunks := []script.Chunk{
		script.EncodeData([]byte{1}),
		script.EncodeData([]byte("BBBB")),
		script.EncodeData([]byte{2}),
		script.EncodeData([]byte("CCCC")),
	}
	pieces, total, mime, ok := DecodeContinuation(chunks, 3, "image/png")
	require.True(t, ok)
	assert.Equal(t, 3, total)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, map[int][]byte{1: []byte("BBBB"), 2: []byte("CCCC")}, pieces)
}

func TestDecodeContinuation_OverridesHintsWithOwnEnvelope(t *testing.T) {
	pieces := map[int][]byte{0: []byte("A"), 1: []byte("B")}
	chunks := buildEnvelope(2, "text/html", pieces)

	got, total, mime, ok := DecodeContinuation(chunks, 99, "application/octet-stream")
	require.True(t, ok)
	assert.Equal(t, 2, total)
	assert.Equal(t, "text/html", mime)
	assert.Equal(t, pieces, got)
}

func TestDecodeContinuation_DropsOutOfRangeIndices(t *testing.T) {
	chunks := []script.Chunk{
		script.EncodeData([]byte{1}),
		script.EncodeData([]byte("BBBB")),
		script.EncodeData([]byte{5}), // out of [0, 3) range
		script.EncodeData([]byte("ZZZZ")),
	}
	pieces, _, _, ok := DecodeContinuation(chunks, 3, "image/png")
	require.True(t, ok)
	assert.Equal(t, map[int][]byte{1: []byte("BBBB")}, pieces)
}

func TestDecodeContinuation_NullResultWhenNothingExtracted(t *testing.T) {
	chunks := []script.Chunk{script.Op(0x76)}
	pieces, _, _, ok := DecodeContinuation(chunks, 3, "image/png")
	assert.False(t, ok)
	assert.Nil(t, pieces)
}

func TestDecodeEnvelope_TotalMustDefine(t *testing.T) {
	chunks := []script.Chunk{
		script.EncodeData([]byte("ord")),
		script.Op(0x76), // not a small-int chunk
		script.EncodeData([]byte("image/png")),
	}
	_, ok := DecodeEnvelope(chunks)
	assert.False(t, ok)
}
