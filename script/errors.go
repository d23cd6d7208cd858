package script

import "fmt"

// ScriptParseError means the byte string is not a well-formed script
// (a push opcode claims more bytes than remain). Callers skip the
// input and continue; this error is never meant to abort a larger
// walk (spec §7).
type ScriptParseError struct {
	Reason string
}

func (e *ScriptParseError) Error() string {
	return fmt.Sprintf("zordinals: script parse error: %s", e.Reason)
}

func parseErrorf(format string, args ...interface{}) error {
	return &ScriptParseError{Reason: fmt.Sprintf(format, args...)}
}
