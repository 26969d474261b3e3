package dblock

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is the sentinel all acquisition timeouts unwrap to.
var ErrTimeout = errors.New("lock acquisition timed out")

// TimeoutError reports a failed acquisition together with whatever is known
// about the current holder, so operators can tell a stuck process from a
// busy one.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
	Holder  *Marker
}

func (e *TimeoutError) Error() string {
	if e.Holder != nil {
		return fmt.Sprintf(
			"lock acquisition timed out after %s: %s held by pid %d (%s on %s) since %s",
			e.Timeout, e.Path, e.Holder.PID, e.Holder.Command, e.Holder.Hostname,
			e.Holder.AcquiredAt.Format(time.RFC3339),
		)
	}
	return fmt.Sprintf("lock acquisition timed out after %s: %s", e.Timeout, e.Path)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }
