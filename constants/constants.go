// Package constants holds process-wide literals shared by the reconstructor
// components: the application name used for the log/app-data path, the
// inscription id grammar, and the mime-to-extension table used by both the
// content store writer and the findFile reader so the two always agree on
// the expected filename.
package constants

import (
	"fmt"
	"regexp"
)

const (
	// AppName scopes the on-disk log directory, matching the teacher's
	// btcutil.AppDataDir convention.
	AppName = "zordinals"

	// InscriptionIdDelimiter separates a genesis txid from its piece
	// index in the canonical inscription id form "<txid>i<n>".
	InscriptionIdDelimiter = "i"

	idRegexpContent = `^[a-f0-9]{64}%s\d+$`
)

// InscriptionIdRegexp matches a canonical (lowercase) inscription id.
var InscriptionIdRegexp = regexp.MustCompile(fmt.Sprintf(idRegexpContent, InscriptionIdDelimiter))

// DefaultMaxSpenderDepth is the default height window C4's forward
// spender search scans before giving up (spec §4.4).
const DefaultMaxSpenderDepth = 2000

// DefaultContentDir is the default content-store directory.
const DefaultContentDir = "./content"
