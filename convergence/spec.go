package convergence

import (
	"context"
	"time"
)

// FailureReason classifies why a convergence step did not succeed.
type FailureReason int

const (
	FailureReasonNone FailureReason = iota
	FailureReasonTimeout
	FailureReasonTransportError
	FailureReasonNotFound
	FailureReasonCommandRejected
)

func (r FailureReason) String() string {
	switch r {
	case FailureReasonNone:
		return "None"
	case FailureReasonTimeout:
		return "Timeout"
	case FailureReasonTransportError:
		return "TransportError"
	case FailureReasonNotFound:
		return "NotFound"
	case FailureReasonCommandRejected:
		return "CommandRejected"
	}

	return "Unknown"
}

// Predicate samples the current state and decides whether it satisfies the
// goal. The returned snapshot is handed to the caller as is. A non-nil error
// aborts polling and is never interpreted as "not yet converged".
type Predicate func(ctx context.Context) (done bool, snapshot interface{}, err error)

// Result is the terminal outcome of one Poll call. It is never modified after
// Poll returned it.
type Result struct {
	Succeeded bool
	Elapsed   time.Duration
	// Evaluations is the number of times the predicate was called.
	Evaluations int
	// LastSnapshot is the snapshot returned by the last successful predicate
	// evaluation. It is nil if no evaluation succeeded.
	LastSnapshot  interface{}
	FailureReason FailureReason
	// Err carries the predicate error for TransportError and NotFound
	// failures and a timeout error for Timeout failures.
	Err error
}

type Interface interface {
	// Poll evaluates the predicate until it is done or the configured timeout
	// is reached. The first evaluation happens immediately.
	Poll(ctx context.Context, predicate Predicate) Result
}
