package learned

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by At in existence-checking mode when the key
// is absent; Get reports the same case as found=false.
var ErrKeyNotFound = errors.New("learned: key not found")

// ErrDuplicateKey is returned by BulkLoad when the input is not strictly
// ascending, per spec §6's precondition that bulk-load keys are unique.
var ErrDuplicateKey = errors.New("learned: bulk load input is not strictly ascending")

// assertionError is the type rtAssert panics with. Spec §7 treats precondition
// violations as fatal assertions that abort the process; panic is the
// idiomatic Go rendering of the original's RT_ASSERT (fprintf + exit(0)) —
// it still crashes an otherwise-unguarded program, but lets a caller that
// wraps index operations in its own recover() decide how to respond instead
// of hard-exiting the whole process out from under them.
type assertionError struct {
	msg string
}

func (e *assertionError) Error() string {
	return fmt.Sprintf("learned: assertion failed: %s", e.msg)
}

func rtAssert(cond bool, msg string) {
	if !cond {
		panic(&assertionError{msg: msg})
	}
}
