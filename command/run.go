package command

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/giantswarm/scaletests/clusterstate"
	settings "github.com/giantswarm/scaletests/config"
	"github.com/giantswarm/scaletests/k8s"
	"github.com/giantswarm/scaletests/logger"
	"github.com/giantswarm/scaletests/report"
	"github.com/giantswarm/scaletests/scaling"
	"github.com/giantswarm/scaletests/scaling/provider"
)

const (
	cliScenarioName = "cli"
)

type runFlags struct {
	interval       time.Duration
	metricsAddress string
	replicas       int32
	scenarios      []string
	skipPreflight  bool
	timeout        time.Duration
}

func newRunCommand(config Config, root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	c := &cobra.Command{
		Use:   "run",
		Short: "Run the configured scaling scenarios.",
		Long: `Run the scaling scenarios of the settings file one after another.

Each scenario verifies the deployment exists, scales it to the desired number
of replicas, waits for observed and available replicas to match and finally
waits for all nodes to be ready. The command fails if any scenario fails.

Passing --replicas runs a single ad hoc scenario instead of the configured
ones, using --timeout and --interval or the [scaling] section.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runScenarios(cmd.Context(), config, root, flags, cmd.Flags().Changed("replicas"))
			if err != nil {
				return microerror.Mask(err)
			}

			return nil
		},
	}

	c.Flags().DurationVar(&flags.interval, "interval", 0, "Poll interval of the ad hoc scenario.")
	c.Flags().StringVar(&flags.metricsAddress, "metrics-address", "", "Address to serve prometheus metrics on while scenarios run, e.g. :8000.")
	c.Flags().Int32Var(&flags.replicas, "replicas", 0, "Desired replicas of an ad hoc scenario.")
	c.Flags().StringSliceVar(&flags.scenarios, "scenario", nil, "Names of the configured scenarios to run, all if empty.")
	c.Flags().BoolVar(&flags.skipPreflight, "skip-preflight", false, "Do not wait for the kubernetes api before running scenarios.")
	c.Flags().DurationVar(&flags.timeout, "timeout", 0, "Timeout of the ad hoc scenario.")

	return c
}

func runScenarios(ctx context.Context, config Config, root *rootFlags, flags *runFlags, adHoc bool) error {
	cfg, err := settings.Load(config.Fs, root.config)
	if err != nil {
		return microerror.Mask(err)
	}

	scenarios, err := selectScenarios(cfg, flags, adHoc)
	if err != nil {
		return microerror.Mask(err)
	}

	var newLogger micrologger.Logger
	{
		c := logger.Config{
			IOWriter: config.Stderr,
			Level:    cfg.Logging.Level,
		}

		newLogger, err = logger.New(c)
		if err != nil {
			return microerror.Mask(err)
		}

		newLogger = newLogger.With("run", uuid.New().String())
	}

	k8sClient, err := config.NewK8sClient(k8s.Config{
		Logger: newLogger,

		KubeConfig: cfg.K8s.KubeConfig,
		Mode:       cfg.K8s.Mode,
		Proxy:      cfg.K8s.Proxy,
		VerifySSL:  *cfg.K8s.VerifySSL,
	})
	if err != nil {
		return microerror.Mask(err)
	}

	if !flags.skipPreflight {
		c := clusterstate.Config{
			K8sClient: k8sClient,
			Logger:    newLogger,
		}

		s, err := clusterstate.New(c)
		if err != nil {
			return microerror.Mask(err)
		}

		err = s.Test(ctx)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	registry := prometheus.NewRegistry()

	var reporter *report.Reporter
	{
		c := report.Config{
			Logger:     newLogger,
			Registerer: registry,
		}

		reporter, err = report.New(c)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	if flags.metricsAddress != "" {
		s := &http.Server{
			Addr:    flags.metricsAddress,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}

		go func() {
			err := s.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				newLogger.LogCtx(ctx, "level", "error", "message", "metrics server failed", "stack", fmt.Sprintf("%#v", err))
			}
		}()
		defer s.Close()
	}

	var k8sProvider *provider.Kubernetes
	{
		c := provider.KubernetesConfig{
			Clock:     clock.RealClock{},
			K8sClient: k8sClient,
			Logger:    newLogger,
		}

		k8sProvider, err = provider.NewKubernetes(c)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	var issuer *scaling.CommandIssuer
	{
		c := scaling.CommandIssuerConfig{
			Logger:   newLogger,
			Provider: k8sProvider,
		}

		issuer, err = scaling.NewCommandIssuer(c)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	var failed []string
	var results []namedResult
	for _, s := range scenarios {
		err = ctx.Err()
		if err != nil {
			return microerror.Mask(err)
		}

		c := scaling.Config{
			Clock:    clock.RealClock{},
			Issuer:   issuer,
			Logger:   newLogger,
			Provider: k8sProvider,
			Reporter: reporter,

			Name:             s.Name,
			NodePollInterval: s.NodeInterval,
			NodeTimeout:      s.NodeTimeout,
			Request: scaling.Request{
				Namespace:       s.Namespace,
				Name:            s.Deployment,
				DesiredReplicas: s.Replicas,
				Timeout:         s.Timeout,
				PollInterval:    s.Interval,
			},
		}

		sc, err := scaling.New(c)
		if err != nil {
			return microerror.Mask(err)
		}

		newLogger.LogCtx(ctx, "level", "info", "message", fmt.Sprintf("starting scenario %#q scaling deployment %#q to %d replicas", s.Name, s.Deployment, s.Replicas))

		r, err := sc.Test(ctx)
		if err != nil {
			failed = append(failed, s.Name)
		}

		results = append(results, namedResult{Name: s.Name, Result: r})
	}

	err = printSummary(config.Stdout, results)
	if err != nil {
		return microerror.Mask(err)
	}

	if len(failed) > 0 {
		return microerror.Maskf(scenarioFailedError, "%s", strings.Join(failed, ", "))
	}

	return nil
}

// selectScenarios returns either the ad hoc scenario defined by flags or the
// configured scenarios filtered by name.
func selectScenarios(cfg settings.Config, flags *runFlags, adHoc bool) ([]settings.ResolvedScenario, error) {
	if adHoc {
		if len(flags.scenarios) > 0 {
			return nil, microerror.Maskf(invalidFlagError, "--scenario and --replicas must not be used together")
		}

		replicas := flags.replicas
		s := settings.Scenario{
			Name:     cliScenarioName,
			Replicas: &replicas,
			Interval: settings.Duration{Duration: flags.interval},
			Timeout:  settings.Duration{Duration: flags.timeout},
		}

		r, err := cfg.Resolve(s)
		if err != nil {
			return nil, microerror.Mask(err)
		}

		return []settings.ResolvedScenario{r}, nil
	}

	all, err := cfg.ResolveAll()
	if err != nil {
		return nil, microerror.Mask(err)
	}
	if len(all) == 0 {
		return nil, microerror.Maskf(invalidFlagError, "no scenarios configured, add [[scenario]] sections or use --replicas")
	}
	if len(flags.scenarios) == 0 {
		return all, nil
	}

	var selected []settings.ResolvedScenario
	for _, name := range flags.scenarios {
		var found bool
		for _, s := range all {
			if s.Name == name {
				selected = append(selected, s)
				found = true
				break
			}
		}
		if !found {
			return nil, microerror.Maskf(invalidFlagError, "scenario %#q is not configured", name)
		}
	}

	return selected, nil
}

type namedResult struct {
	Name   string
	Result scaling.Result
}

func printSummary(w io.Writer, results []namedResult) error {
	t := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(t, "SCENARIO\tSTATE\tFAILED STEP\tREASON\tELAPSED")
	for _, r := range results {
		failedStep := "-"
		if r.Result.State == scaling.StateFailed {
			failedStep = r.Result.FailedStep.String()
		}

		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Result.State, failedStep, r.Result.FailureReason, r.Result.Elapsed.Round(time.Millisecond))
	}

	err := t.Flush()
	if err != nil {
		return microerror.Mask(err)
	}

	return nil
}
