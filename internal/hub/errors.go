package hub

import (
	"errors"
	"fmt"
)

// DegradedWriteError reports a partial publish: the current value landed but
// a dependent write did not. There is no rollback; the caller decides
// whether to retry the missing half.
type DegradedWriteError struct {
	Symbol  string
	Missing string // which write was lost, e.g. "history"
	Err     error
}

func (e *DegradedWriteError) Error() string {
	return fmt.Sprintf("degraded write for %s: current value stored, %s write failed: %v",
		e.Symbol, e.Missing, e.Err)
}

func (e *DegradedWriteError) Unwrap() error {
	return e.Err
}

// IsDegraded reports whether err is a degraded write.
func IsDegraded(err error) bool {
	var d *DegradedWriteError
	return errors.As(err, &d)
}
