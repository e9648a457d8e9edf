package scaling

import (
	"context"

	"github.com/giantswarm/scaletests/convergence"
)

type Interface interface {
	// Test executes the scaling test against the configured deployment. The
	// test processes the following steps to ensure scaling converges in time.
	//
	//     - Verify the deployment exists.
	//     - Scale the deployment to the desired number of replicas.
	//     - Wait for observed and available replicas to match the desired number.
	//     - Wait for all cluster nodes to be ready.
	//
	// Any failing step ends the test. The returned Result is always set, the
	// returned error matches the failure reason of the Result.
	Test(ctx context.Context) (Result, error)
}

// Issuer sends a single scaling mutation.
type Issuer interface {
	Issue(ctx context.Context, request Request) error
}

// Reporter receives progress and outcome events of a scenario. It must not
// influence the control flow of the scenario.
type Reporter interface {
	Transition(ctx context.Context, scenario string, from, to State)
	Step(ctx context.Context, scenario string, step State, result convergence.Result)
	Finished(ctx context.Context, scenario string, result Result)
}
