package worker

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateProcessor = errors.New("processor already registered")
	ErrUnknownJobType     = errors.New("no processor registered for job type")
	ErrAttemptsExhausted  = errors.New("attempts exhausted by lost leases")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The job fails immediately and
// the processor's permanent failure hook runs.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// DeferredError asks the dispatcher to run the job again after a delay
// without counting an attempt.
type DeferredError struct {
	Reason string
	After  time.Duration
}

func (e *DeferredError) Error() string {
	return fmt.Sprintf("deferred for %s: %s", e.After, e.Reason)
}

func Deferred(reason string, after time.Duration) error {
	return &DeferredError{Reason: reason, After: after}
}
