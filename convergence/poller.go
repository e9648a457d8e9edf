package convergence

import (
	"context"
	"time"

	"github.com/giantswarm/microerror"
	"k8s.io/apimachinery/pkg/util/clock"
)

type Config struct {
	Clock clock.Clock
	// ErrorReason classifies predicate errors. It defaults to always
	// returning FailureReasonTransportError.
	ErrorReason func(err error) FailureReason

	Interval time.Duration
	Timeout  time.Duration
}

// Poller is a bounded, blocking retry loop. Sleeping happens through the
// configured clock only, so a fake clock makes every run deterministic.
type Poller struct {
	clock       clock.Clock
	errorReason func(err error) FailureReason

	interval       time.Duration
	maxEvaluations int
	timeout        time.Duration
}

func New(config Config) (*Poller, error) {
	if config.Clock == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Clock must not be empty", config)
	}
	if config.ErrorReason == nil {
		config.ErrorReason = func(err error) FailureReason {
			return FailureReasonTransportError
		}
	}

	if config.Interval <= 0 {
		return nil, microerror.Maskf(invalidConfigError, "%T.Interval must be greater than zero", config)
	}
	if config.Timeout < config.Interval {
		return nil, microerror.Maskf(invalidConfigError, "%T.Timeout must not be less than %T.Interval", config, config)
	}

	p := &Poller{
		clock:       config.Clock,
		errorReason: config.ErrorReason,

		interval:       config.Interval,
		maxEvaluations: MaxEvaluations(config.Timeout, config.Interval),
		timeout:        config.Timeout,
	}

	return p, nil
}

// MaxEvaluations returns the upper bound of predicate evaluations a Poller
// with the given timeout and interval performs.
func MaxEvaluations(timeout, interval time.Duration) int {
	return int(timeout/interval) + 1
}

func (p *Poller) Poll(ctx context.Context, predicate Predicate) Result {
	start := p.clock.Now()

	var evaluations int
	var last interface{}
	for {
		done, snapshot, err := predicate(ctx)
		evaluations++
		elapsed := p.clock.Since(start)

		if err != nil {
			r := Result{
				Elapsed:       elapsed,
				Evaluations:   evaluations,
				LastSnapshot:  last,
				FailureReason: p.errorReason(err),
				Err:           err,
			}

			return r
		}

		last = snapshot

		if done {
			r := Result{
				Succeeded:     true,
				Elapsed:       elapsed,
				Evaluations:   evaluations,
				LastSnapshot:  last,
				FailureReason: FailureReasonNone,
			}

			return r
		}

		if elapsed >= p.timeout || evaluations >= p.maxEvaluations {
			r := Result{
				Elapsed:       elapsed,
				Evaluations:   evaluations,
				LastSnapshot:  last,
				FailureReason: FailureReasonTimeout,
				Err:           microerror.Maskf(timeoutError, "not converged after %d evaluations within %s, last snapshot %+v", evaluations, p.timeout, last),
			}

			return r
		}

		p.clock.Sleep(p.interval)
	}
}
