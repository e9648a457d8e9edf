// Package config loads the TOML settings file describing the cluster
// connection and the scaling scenarios to verify.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/giantswarm/microerror"
	"github.com/spf13/afero"
)

const (
	DefaultPath = "config/settings.toml"

	ModeInCluster = "in-cluster"
	ModeLocal     = "local"
)

var (
	levels = []string{"debug", "info", "warning", "error"}
)

type Config struct {
	K8s       K8s        `toml:"k8s"`
	Logging   Logging    `toml:"logging"`
	Nodes     Timing     `toml:"nodes"`
	Scaling   Timing     `toml:"scaling"`
	Scenarios []Scenario `toml:"scenario"`
}

type K8s struct {
	DeploymentName string `toml:"deployment_name"`
	KubeConfig     string `toml:"kubeconfig"`
	// Mode is either "local" or "in-cluster", defaults to "local".
	Mode      string `toml:"mode"`
	Namespace string `toml:"namespace"`
	Proxy     string `toml:"proxy"`
	// VerifySSL defaults to true.
	VerifySSL *bool `toml:"verify_ssl"`
}

type Logging struct {
	Level string `toml:"level"`
}

type Timing struct {
	Interval Duration `toml:"interval"`
	Timeout  Duration `toml:"timeout"`
}

type Scenario struct {
	Name         string   `toml:"name"`
	Replicas     *int32   `toml:"replicas"`
	Interval     Duration `toml:"interval"`
	Timeout      Duration `toml:"timeout"`
	NodeInterval Duration `toml:"node_interval"`
	NodeTimeout  Duration `toml:"node_timeout"`
}

// ResolvedScenario is a Scenario with all timings filled in from the
// sections it inherits from.
type ResolvedScenario struct {
	Name         string
	Namespace    string
	Deployment   string
	Replicas     int32
	Interval     time.Duration
	Timeout      time.Duration
	NodeInterval time.Duration
	NodeTimeout  time.Duration
}

// Load reads and validates the settings file at path.
func Load(fs afero.Fs, path string) (Config, error) {
	b, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return Config{}, microerror.Maskf(notFoundError, "config file %#q", path)
	} else if err != nil {
		return Config{}, microerror.Mask(err)
	}

	c, err := Parse(b)
	if err != nil {
		return Config{}, microerror.Mask(err)
	}

	return c, nil
}

// Parse decodes and validates the given TOML document.
func Parse(b []byte) (Config, error) {
	var c Config

	md, err := toml.Decode(string(b), &c)
	if IsInvalidConfig(err) {
		return Config{}, microerror.Mask(err)
	} else if err != nil {
		return Config{}, microerror.Maskf(invalidConfigError, "%s", err.Error())
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, microerror.Maskf(invalidConfigError, "unknown keys %s", strings.Join(keys, ", "))
	}

	c.setDefaults()

	err = c.Validate()
	if err != nil {
		return Config{}, microerror.Mask(err)
	}

	return c, nil
}

func (c *Config) setDefaults() {
	if c.K8s.Mode == "" {
		c.K8s.Mode = ModeLocal
	}
	if c.K8s.VerifySSL == nil {
		v := true
		c.K8s.VerifySSL = &v
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c Config) Validate() error {
	if c.K8s.Namespace == "" {
		return microerror.Maskf(invalidConfigError, "k8s.namespace must not be empty")
	}
	if c.K8s.DeploymentName == "" {
		return microerror.Maskf(invalidConfigError, "k8s.deployment_name must not be empty")
	}
	if c.K8s.Mode != ModeLocal && c.K8s.Mode != ModeInCluster {
		return microerror.Maskf(invalidConfigError, "k8s.mode must be %#q or %#q, got %#q", ModeLocal, ModeInCluster, c.K8s.Mode)
	}
	if c.K8s.Mode == ModeInCluster && c.K8s.KubeConfig != "" {
		return microerror.Maskf(invalidConfigError, "k8s.kubeconfig must be empty in mode %#q", ModeInCluster)
	}
	if !containsString(levels, c.Logging.Level) {
		return microerror.Maskf(invalidConfigError, "logging.level must be one of %s, got %#q", strings.Join(levels, ", "), c.Logging.Level)
	}

	names := map[string]bool{}
	for i, s := range c.Scenarios {
		if s.Name == "" {
			return microerror.Maskf(invalidConfigError, "scenario[%d].name must not be empty", i)
		}
		if names[s.Name] {
			return microerror.Maskf(invalidConfigError, "scenario name %#q must be unique", s.Name)
		}
		names[s.Name] = true

		if s.Replicas == nil {
			return microerror.Maskf(invalidConfigError, "scenario %#q replicas must be set", s.Name)
		}

		_, err := c.Resolve(s)
		if err != nil {
			return microerror.Mask(err)
		}
	}

	return nil
}

// Resolve fills in the timings of s. Scenario values take precedence over the
// scaling section; node timings fall back to the nodes section and then to
// the resolved replica timings. Timeout and interval have no built-in
// defaults.
func (c Config) Resolve(s Scenario) (ResolvedScenario, error) {
	r := ResolvedScenario{
		Name:       s.Name,
		Namespace:  c.K8s.Namespace,
		Deployment: c.K8s.DeploymentName,

		Interval:     first(s.Interval.Duration, c.Scaling.Interval.Duration),
		Timeout:      first(s.Timeout.Duration, c.Scaling.Timeout.Duration),
		NodeInterval: first(s.NodeInterval.Duration, c.Nodes.Interval.Duration),
		NodeTimeout:  first(s.NodeTimeout.Duration, c.Nodes.Timeout.Duration),
	}
	if s.Replicas != nil {
		r.Replicas = *s.Replicas
	}

	r.NodeInterval = first(r.NodeInterval, r.Interval)
	r.NodeTimeout = first(r.NodeTimeout, r.Timeout)

	if r.Replicas < 0 {
		return ResolvedScenario{}, microerror.Maskf(invalidConfigError, "scenario %#q replicas must not be negative", s.Name)
	}

	err := validateTiming(fmt.Sprintf("scenario %#q", s.Name), r.Timeout, r.Interval)
	if err != nil {
		return ResolvedScenario{}, microerror.Mask(err)
	}
	err = validateTiming(fmt.Sprintf("scenario %#q node", s.Name), r.NodeTimeout, r.NodeInterval)
	if err != nil {
		return ResolvedScenario{}, microerror.Mask(err)
	}

	return r, nil
}

// ResolveAll resolves every configured scenario in file order.
func (c Config) ResolveAll() ([]ResolvedScenario, error) {
	var l []ResolvedScenario
	for _, s := range c.Scenarios {
		r, err := c.Resolve(s)
		if err != nil {
			return nil, microerror.Mask(err)
		}
		l = append(l, r)
	}

	return l, nil
}

func validateTiming(prefix string, timeout, interval time.Duration) error {
	if interval <= 0 {
		return microerror.Maskf(invalidConfigError, "%s interval must be set and greater than zero", prefix)
	}
	if timeout <= 0 {
		return microerror.Maskf(invalidConfigError, "%s timeout must be set and greater than zero", prefix)
	}
	if timeout < interval {
		return microerror.Maskf(invalidConfigError, "%s timeout %s must not be less than interval %s", prefix, timeout, interval)
	}

	return nil
}

func first(ds ...time.Duration) time.Duration {
	for _, d := range ds {
		if d != 0 {
			return d
		}
	}

	return 0
}

func containsString(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}

	return false
}
