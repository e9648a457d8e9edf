package scaling

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/giantswarm/scaletests/convergence"
	"github.com/giantswarm/scaletests/readiness"
	"github.com/giantswarm/scaletests/scaling/provider"
)

type Config struct {
	Clock    clock.Clock
	Issuer   Issuer
	Logger   micrologger.Logger
	Provider provider.Interface
	Reporter Reporter

	Name string
	// NodePollInterval defaults to Request.PollInterval.
	NodePollInterval time.Duration
	// NodeTimeout defaults to Request.Timeout.
	NodeTimeout time.Duration
	Request     Request
}

// Scenario verifies that scaling a deployment converges, first in terms of
// replicas and then in terms of node readiness. Callers must serialize
// scenarios targeting the same deployment.
type Scenario struct {
	clock    clock.Clock
	issuer   Issuer
	logger   micrologger.Logger
	provider provider.Interface
	reporter Reporter

	nodePoller    *convergence.Poller
	replicaPoller *convergence.Poller

	name    string
	request Request
}

func New(config Config) (*Scenario, error) {
	if config.Clock == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Clock must not be empty", config)
	}
	if config.Issuer == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Issuer must not be empty", config)
	}
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.Provider == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Provider must not be empty", config)
	}
	if config.Reporter == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Reporter must not be empty", config)
	}

	if config.Name == "" {
		return nil, microerror.Maskf(invalidConfigError, "%T.Name must not be empty", config)
	}
	err := config.Request.Validate()
	if err != nil {
		return nil, microerror.Mask(err)
	}
	if config.NodePollInterval == 0 {
		config.NodePollInterval = config.Request.PollInterval
	}
	if config.NodeTimeout == 0 {
		config.NodeTimeout = config.Request.Timeout
	}

	var replicaPoller *convergence.Poller
	{
		c := convergence.Config{
			Clock:       config.Clock,
			ErrorReason: errorReason,

			Interval: config.Request.PollInterval,
			Timeout:  config.Request.Timeout,
		}

		replicaPoller, err = convergence.New(c)
		if convergence.IsInvalidConfig(err) {
			return nil, microerror.Maskf(invalidConfigError, "%s", err.Error())
		} else if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	var nodePoller *convergence.Poller
	{
		c := convergence.Config{
			Clock:       config.Clock,
			ErrorReason: errorReason,

			Interval: config.NodePollInterval,
			Timeout:  config.NodeTimeout,
		}

		nodePoller, err = convergence.New(c)
		if convergence.IsInvalidConfig(err) {
			return nil, microerror.Maskf(invalidConfigError, "%s", err.Error())
		} else if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	s := &Scenario{
		clock:    config.Clock,
		issuer:   config.Issuer,
		logger:   config.Logger,
		provider: config.Provider,
		reporter: config.Reporter,

		nodePoller:    nodePoller,
		replicaPoller: replicaPoller,

		name:    config.Name,
		request: config.Request,
	}

	return s, nil
}

func (s *Scenario) Test(ctx context.Context) (Result, error) {
	r := &run{
		scenario: s,
		start:    s.clock.Now(),
		result: Result{
			State: StateNotStarted,
		},
	}

	namespace := s.request.Namespace
	name := s.request.Name

	{
		s.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("verifying deployment %#q exists in namespace %#q", name, namespace))

		_, err := s.provider.GetResourceStatus(ctx, namespace, name)
		if provider.IsNotFound(err) {
			return r.fail(ctx, StateResourceVerified, convergence.FailureReasonNotFound, microerror.Maskf(notFoundError, "deployment %#q in namespace %#q", name, namespace))
		} else if err != nil {
			return r.fail(ctx, StateResourceVerified, convergence.FailureReasonTransportError, microerror.Maskf(transportError, "%s", err.Error()))
		}

		r.advance(ctx, StateResourceVerified)

		s.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("deployment %#q exists in namespace %#q", name, namespace))
	}

	{
		err := s.issuer.Issue(ctx, s.request)
		if IsNotFound(err) {
			return r.fail(ctx, StateScaleIssued, convergence.FailureReasonNotFound, err)
		} else if IsCommandRejected(err) {
			return r.fail(ctx, StateScaleIssued, convergence.FailureReasonCommandRejected, err)
		} else if IsTransport(err) {
			return r.fail(ctx, StateScaleIssued, convergence.FailureReasonTransportError, err)
		} else if err != nil {
			return r.fail(ctx, StateScaleIssued, convergence.FailureReasonTransportError, microerror.Maskf(transportError, "%s", err.Error()))
		}

		r.advance(ctx, StateScaleIssued)
	}

	{
		s.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("waiting for deployment %#q to reach %d replicas", name, s.request.DesiredReplicas))

		p := readiness.ForResource(s.provider, namespace, name, readiness.ReplicaCount(s.request.DesiredReplicas))

		err := r.poll(ctx, StateReplicasConverged, s.replicaPoller, p)
		if err != nil {
			return r.result, microerror.Mask(err)
		}

		s.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("deployment %#q reached %d replicas", name, s.request.DesiredReplicas))
	}

	{
		s.logger.LogCtx(ctx, "level", "debug", "message", "waiting for all nodes to be ready")

		p := readiness.ForNodes(s.provider, readiness.AllNodesReady())

		err := r.poll(ctx, StateNodesReady, s.nodePoller, p)
		if err != nil {
			return r.result, microerror.Mask(err)
		}

		s.logger.LogCtx(ctx, "level", "debug", "message", "all nodes are ready")
	}

	r.advance(ctx, StatePassed)
	r.finish(ctx)

	return r.result, nil
}

// run holds the state of a single Test call. The state only moves forward
// and is frozen once terminal.
type run struct {
	scenario *Scenario
	start    time.Time
	result   Result
}

func (r *run) advance(ctx context.Context, to State) {
	from := r.result.State
	if from.Terminal() || to <= from {
		return
	}

	r.result.State = to
	r.scenario.reporter.Transition(ctx, r.scenario.name, from, to)
}

func (r *run) fail(ctx context.Context, step State, reason convergence.FailureReason, err error) (Result, error) {
	r.scenario.logger.LogCtx(ctx, "level", "error", "message", fmt.Sprintf("scenario %#q failed at %s with %s", r.scenario.name, step, reason), "stack", fmt.Sprintf("%#v", err))

	r.result.FailedStep = step
	r.result.FailureReason = reason
	r.advance(ctx, StateFailed)
	r.finish(ctx)

	return r.result, microerror.Mask(err)
}

func (r *run) finish(ctx context.Context) {
	r.result.Elapsed = r.scenario.clock.Since(r.start)
	r.scenario.reporter.Finished(ctx, r.scenario.name, r.result)
}

func (r *run) poll(ctx context.Context, step State, poller convergence.Interface, p convergence.Predicate) error {
	res := poller.Poll(ctx, p)

	r.result.Steps = append(r.result.Steps, StepResult{Step: step, Result: res})
	r.scenario.reporter.Step(ctx, r.scenario.name, step, res)

	if res.Succeeded {
		r.advance(ctx, step)
		return nil
	}

	var err error
	switch res.FailureReason {
	case convergence.FailureReasonTimeout:
		err = microerror.Maskf(convergenceTimeoutError, "%s: %s", step, res.Err.Error())
	case convergence.FailureReasonNotFound:
		err = microerror.Maskf(notFoundError, "%s: %s", step, res.Err.Error())
	default:
		err = microerror.Maskf(transportError, "%s: %s", step, res.Err.Error())
	}

	_, err = r.fail(ctx, step, res.FailureReason, err)

	return err
}

func errorReason(err error) convergence.FailureReason {
	if provider.IsNotFound(err) {
		return convergence.FailureReasonNotFound
	}

	return convergence.FailureReasonTransportError
}
