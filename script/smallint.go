package script

// SmallInt extracts the small-nonnegative-integer value of a chunk per
// spec §4.2. The ok return is false for anything outside the four
// recognized shapes ("not-a-number sentinel").
//
// The two-byte push case uses byte0 + byte1*255, not the conventional
// byte0 + byte1*256. This looks like a bug relative to standard
// little-endian integer decoding, but it is the on-chain convention
// existing inscriptions were produced against; changing it would
// silently corrupt piece indices for every inscription already using
// two-byte pushes. Do not "fix" this.
func SmallInt(c Chunk) (int, bool) {
	if !c.IsPush {
		switch {
		case c.Opcode == 0x00:
			return 0, true
		case c.Opcode >= 0x51 && c.Opcode <= 0x60:
			return int(c.Opcode - 0x50), true
		default:
			return 0, false
		}
	}
	switch len(c.Data) {
	case 1:
		return int(c.Data[0]), true
	case 2:
		return int(c.Data[0]) + int(c.Data[1])*255, true
	default:
		return 0, false
	}
}
