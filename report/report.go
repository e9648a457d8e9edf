// Package report turns scenario events into log lines and prometheus
// metrics. It only observes, it never influences a scenario.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giantswarm/scaletests/convergence"
	"github.com/giantswarm/scaletests/readiness"
	"github.com/giantswarm/scaletests/scaling"
	"github.com/giantswarm/scaletests/scaling/provider"
)

const (
	namespace = "scaletests"
)

const (
	outcomeConverged = "converged"
	outcomeFailed    = "failed"
)

type Config struct {
	Logger     micrologger.Logger
	Registerer prometheus.Registerer
}

type Reporter struct {
	logger micrologger.Logger

	stepDuration    *prometheus.GaugeVec
	stepEvaluations *prometheus.GaugeVec
	scenarios       *prometheus.CounterVec
}

func New(config Config) (*Reporter, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.Registerer == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Registerer must not be empty", config)
	}

	r := &Reporter{
		logger: config.Logger,

		stepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "step",
				Name:      "duration_seconds",
				Help:      "Time a scenario step took to converge or to give up.",
			},
			[]string{"scenario", "step", "outcome"},
		),
		stepEvaluations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "step",
				Name:      "evaluations",
				Help:      "Number of status evaluations of a scenario step.",
			},
			[]string{"scenario", "step"},
		),
		scenarios: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scenario",
				Name:      "results_total",
				Help:      "Terminal scenario results by state and failure reason.",
			},
			[]string{"scenario", "state", "reason"},
		),
	}

	for _, c := range []prometheus.Collector{r.stepDuration, r.stepEvaluations, r.scenarios} {
		err := config.Registerer.Register(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	return r, nil
}

func (r *Reporter) Transition(ctx context.Context, scenario string, from, to scaling.State) {
	r.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("scenario %#q moved from %s to %s", scenario, from, to), "scenario", scenario)
}

func (r *Reporter) Step(ctx context.Context, scenario string, step scaling.State, result convergence.Result) {
	outcome := outcomeConverged
	if !result.Succeeded {
		outcome = outcomeFailed
	}

	r.stepDuration.WithLabelValues(scenario, step.String(), outcome).Set(result.Elapsed.Seconds())
	r.stepEvaluations.WithLabelValues(scenario, step.String()).Set(float64(result.Evaluations))

	if s, ok := result.LastSnapshot.(provider.ClusterSnapshot); ok && len(s.Nodes) == 0 {
		r.logger.LogCtx(ctx, "level", "warning", "message", "node readiness was decided on an empty node list", "scenario", scenario)
	}

	if result.Succeeded {
		r.logger.LogCtx(ctx, "level", "info", "message", fmt.Sprintf("%s in %.2f seconds after %d evaluations", step, result.Elapsed.Seconds(), result.Evaluations), "scenario", scenario, "snapshot", describe(result.LastSnapshot))
	} else {
		r.logger.LogCtx(ctx, "level", "error", "message", fmt.Sprintf("%s not reached with %s after %.2f seconds and %d evaluations", step, result.FailureReason, result.Elapsed.Seconds(), result.Evaluations), "scenario", scenario, "snapshot", describe(result.LastSnapshot))
	}
}

func (r *Reporter) Finished(ctx context.Context, scenario string, result scaling.Result) {
	r.scenarios.WithLabelValues(scenario, result.State.String(), result.FailureReason.String()).Inc()

	if result.Passed() {
		r.logger.LogCtx(ctx, "level", "info", "message", fmt.Sprintf("scenario %#q passed in %.2f seconds", scenario, result.Elapsed.Seconds()), "scenario", scenario)
	} else {
		r.logger.LogCtx(ctx, "level", "error", "message", fmt.Sprintf("scenario %#q failed at %s with %s after %.2f seconds", scenario, result.FailedStep, result.FailureReason, result.Elapsed.Seconds()), "scenario", scenario)
	}
}

// describe renders a snapshot for diagnostics.
func describe(snapshot interface{}) string {
	switch s := snapshot.(type) {
	case provider.ResourceStatus:
		return fmt.Sprintf("observed=%d available=%d", s.ObservedReplicas, s.AvailableReplicas)
	case provider.ClusterSnapshot:
		notReady := readiness.NotReadyNodes(s)
		d := fmt.Sprintf("ready=%d/%d", len(s.Nodes)-len(notReady), len(s.Nodes))
		if len(notReady) > 0 {
			d += fmt.Sprintf(" not-ready=%s", strings.Join(notReady, ","))
		}
		return d
	case nil:
		return "none"
	}

	return fmt.Sprintf("%+v", snapshot)
}
