// Package id implements the canonicalization rules of spec §3's
// "Inscription Identity": an inscription id is always the genesis txid
// with a literal "i0" suffix, regardless of what suffix (if any) the
// caller supplied. The underlying hash validation is grounded on the
// teacher's internal/util/outpoint.go and internal/util/chainhash.go,
// which build equivalent ids on top of btcd's wire.OutPoint/chainhash.
package id

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/zordinals/zordinals/constants"
)

// InscriptionId is the canonical "<genesisTxid>i0" identity of an
// inscription. The zero value is not valid; construct via Normalize.
type InscriptionId struct {
	GenesisTxid string
}

// String renders the canonical form.
func (i InscriptionId) String() string {
	return i.GenesisTxid + constants.InscriptionIdDelimiter + "0"
}

// Normalize accepts a bare 64-hex txid, "<txid>i0", or "<txid>i<n>" for
// any n, and returns the canonical InscriptionId. Any "i<n>" suffix is
// discarded and replaced with "i0" per spec §3: only the genesis txid is
// semantically meaningful, the index suffix is always 0 in canonical form.
func Normalize(idOrTxid string) (InscriptionId, error) {
	s := strings.ToLower(strings.TrimSpace(idOrTxid))
	txid := s
	if idx := strings.LastIndex(s, constants.InscriptionIdDelimiter); idx > 0 {
		// A delimiter anywhere but the start is only legal as the
		// piece-index suffix, so the whole string must match the
		// canonical "<64 hex>i<digits>" grammar.
		if !constants.InscriptionIdRegexp.MatchString(s) {
			return InscriptionId{}, fmt.Errorf("zordinals: invalid inscription id %q", idOrTxid)
		}
		txid = s[:idx]
	}
	if _, err := chainhash.NewHashFromStr(txid); err != nil {
		return InscriptionId{}, fmt.Errorf("zordinals: invalid txid %q: %w", idOrTxid, err)
	}
	return InscriptionId{GenesisTxid: txid}, nil
}
