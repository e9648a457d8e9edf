package scaling

import (
	"time"

	"github.com/giantswarm/microerror"

	"github.com/giantswarm/scaletests/convergence"
)

// State is the position of a scenario in its linear lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateResourceVerified
	StateScaleIssued
	StateReplicasConverged
	StateNodesReady
	StatePassed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateResourceVerified:
		return "ResourceVerified"
	case StateScaleIssued:
		return "ScaleIssued"
	case StateReplicasConverged:
		return "ReplicasConverged"
	case StateNodesReady:
		return "NodesReady"
	case StatePassed:
		return "Passed"
	case StateFailed:
		return "Failed"
	}

	return "Unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StatePassed || s == StateFailed
}

// Request describes one scaling operation and the window its convergence is
// verified in.
type Request struct {
	Namespace       string
	Name            string
	DesiredReplicas int32
	Timeout         time.Duration
	PollInterval    time.Duration
}

func (r Request) Validate() error {
	if r.Namespace == "" {
		return microerror.Maskf(invalidConfigError, "%T.Namespace must not be empty", r)
	}
	if r.Name == "" {
		return microerror.Maskf(invalidConfigError, "%T.Name must not be empty", r)
	}
	if r.DesiredReplicas < 0 {
		return microerror.Maskf(invalidConfigError, "%T.DesiredReplicas must not be negative", r)
	}
	if r.PollInterval <= 0 {
		return microerror.Maskf(invalidConfigError, "%T.PollInterval must be greater than zero", r)
	}
	if r.Timeout < r.PollInterval {
		return microerror.Maskf(invalidConfigError, "%T.Timeout must not be less than %T.PollInterval", r, r)
	}

	return nil
}

// StepResult is the convergence outcome of one polling step.
type StepResult struct {
	Step   State
	Result convergence.Result
}

// Result is the terminal outcome of a scenario.
type Result struct {
	State         State
	FailureReason convergence.FailureReason
	// FailedStep is the state the scenario tried to reach when it failed.
	FailedStep State
	Steps      []StepResult
	Elapsed    time.Duration
}

// Passed reports whether the scenario reached StatePassed.
func (r Result) Passed() bool {
	return r.State == StatePassed
}
