package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const (
	settings = `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[scaling]
timeout = 600
interval = "10s"

[nodes]
timeout = "240s"

[logging]
level = "debug"

[[scenario]]
name = "scale-up"
replicas = 1000

[[scenario]]
name = "scale-down"
replicas = 1
timeout = "5m"

[[scenario]]
name = "node-tracking"
replicas = 1000
node_interval = "5s"
`
)

func Test_Config_Load(t *testing.T) {
	fs := afero.NewMemMapFs()

	err := afero.WriteFile(fs, DefaultPath, []byte(settings), 0644)
	if err != nil {
		t.Fatalf("error == %#v, want nil", err)
	}

	c, err := Load(fs, DefaultPath)
	if err != nil {
		t.Fatalf("error == %#v, want nil", err)
	}

	if c.K8s.Mode != ModeLocal {
		t.Fatalf("mode == %#q, want %#q", c.K8s.Mode, ModeLocal)
	}
	if c.K8s.VerifySSL == nil || !*c.K8s.VerifySSL {
		t.Fatalf("verify ssl == %v, want true", c.K8s.VerifySSL)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("level == %#q, want %#q", c.Logging.Level, "debug")
	}

	scenarios, err := c.ResolveAll()
	if err != nil {
		t.Fatalf("error == %#v, want nil", err)
	}

	expected := []ResolvedScenario{
		{
			Name:         "scale-up",
			Namespace:    "scale-test",
			Deployment:   "scale-test",
			Replicas:     1000,
			Interval:     10 * time.Second,
			Timeout:      600 * time.Second,
			NodeInterval: 10 * time.Second,
			NodeTimeout:  240 * time.Second,
		},
		{
			Name:         "scale-down",
			Namespace:    "scale-test",
			Deployment:   "scale-test",
			Replicas:     1,
			Interval:     10 * time.Second,
			Timeout:      5 * time.Minute,
			NodeInterval: 10 * time.Second,
			NodeTimeout:  240 * time.Second,
		},
		{
			Name:         "node-tracking",
			Namespace:    "scale-test",
			Deployment:   "scale-test",
			Replicas:     1000,
			Interval:     10 * time.Second,
			Timeout:      600 * time.Second,
			NodeInterval: 5 * time.Second,
			NodeTimeout:  240 * time.Second,
		},
	}
	if !cmp.Equal(scenarios, expected) {
		t.Fatalf("\n\n%s\n", cmp.Diff(expected, scenarios))
	}
}

func Test_Config_Load_NotFound(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), DefaultPath)
	if !IsNotFound(err) {
		t.Fatalf("error == %#v, want matching", err)
	}
}

func Test_Config_Parse(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		errorMatcher func(error) bool
	}{
		{
			name: "case 0: minimal config",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"
`,
			errorMatcher: nil,
		},
		{
			name: "case 1: in-cluster with proxy and ssl verification disabled",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"
mode = "in-cluster"
proxy = "http://proxy.internal:3128"
verify_ssl = false
`,
			errorMatcher: nil,
		},
		{
			name: "case 2: missing namespace",
			input: `
[k8s]
deployment_name = "scale-test"
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 3: unknown mode",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"
mode = "remote"
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 4: unknown logging level",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[logging]
level = "trace"
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 5: scenario without timing",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[[scenario]]
name = "scale-up"
replicas = 1000
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 6: scenario timeout below interval",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[[scenario]]
name = "scale-up"
replicas = 1000
timeout = "5s"
interval = "10s"
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 7: duplicate scenario names",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[scaling]
timeout = 60
interval = 10

[[scenario]]
name = "scale"
replicas = 3

[[scenario]]
name = "scale"
replicas = 1
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 8: scenario without replicas",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[scaling]
timeout = 60
interval = 10

[[scenario]]
name = "scale"
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 9: negative replicas",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[scaling]
timeout = 60
interval = 10

[[scenario]]
name = "scale"
replicas = -1
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 10: malformed duration",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"

[scaling]
timeout = "ten minutes"
interval = 10
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 11: unknown key",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"
deployment = "typo"
`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name:         "case 12: malformed toml",
			input:        `[k8s`,
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 13: kubeconfig in cluster mode",
			input: `
[k8s]
namespace = "scale-test"
deployment_name = "scale-test"
mode = "in-cluster"
kubeconfig = "/root/.kube/config"
`,
			errorMatcher: IsInvalidConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))

			switch {
			case err != nil && tc.errorMatcher == nil:
				t.Fatalf("error == %#v, want nil", err)
			case err == nil && tc.errorMatcher != nil:
				t.Fatalf("error == nil, want non-nil")
			case err != nil && !tc.errorMatcher(err):
				t.Fatalf("error == %#v, want matching", err)
			}
		})
	}
}

func Test_Config_Resolve(t *testing.T) {
	replicas := int32(3)

	c := Config{
		K8s: K8s{
			Namespace:      "scale-test",
			DeploymentName: "scale-test",
		},
	}

	_, err := c.Resolve(Scenario{Name: "cli", Replicas: &replicas})
	if !IsInvalidConfig(err) {
		t.Fatalf("error == %#v, want matching", err)
	}

	s := Scenario{
		Name:     "cli",
		Replicas: &replicas,
		Interval: Duration{Duration: 10 * time.Second},
		Timeout:  Duration{Duration: 30 * time.Second},
	}

	r, err := c.Resolve(s)
	if err != nil {
		t.Fatalf("error == %#v, want nil", err)
	}

	expected := ResolvedScenario{
		Name:         "cli",
		Namespace:    "scale-test",
		Deployment:   "scale-test",
		Replicas:     3,
		Interval:     10 * time.Second,
		Timeout:      30 * time.Second,
		NodeInterval: 10 * time.Second,
		NodeTimeout:  30 * time.Second,
	}
	if !cmp.Equal(r, expected) {
		t.Fatalf("\n\n%s\n", cmp.Diff(expected, r))
	}
}

func Test_Config_Duration(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Duration
		valid    bool
	}{
		{input: "600", expected: 600 * time.Second, valid: true},
		{input: "10s", expected: 10 * time.Second, valid: true},
		{input: "4m", expected: 4 * time.Minute, valid: true},
		{input: "1m30s", expected: 90 * time.Second, valid: true},
		{input: "soon", valid: false},
		{input: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tc.input))

			if tc.valid && err != nil {
				t.Fatalf("error == %#v, want nil", err)
			}
			if !tc.valid && !IsInvalidConfig(err) {
				t.Fatalf("error == %#v, want matching", err)
			}
			if tc.valid && d.Duration != tc.expected {
				t.Fatalf("duration == %s, want %s", d.Duration, tc.expected)
			}
		})
	}
}
