package scaling

import (
	"context"
	"testing"
	"time"

	"github.com/giantswarm/micrologger/microloggertest"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func Test_Scaling_CommandIssuer_Issue(t *testing.T) {
	replicas := int32(1)
	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "scale-test",
			Namespace: "scale-test",
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
		},
	}

	testCases := []struct {
		name         string
		objects      []runtime.Object
		reactor      k8stesting.ReactionFunc
		errorMatcher func(error) bool
	}{
		{
			name:         "case 0: scale issued",
			objects:      []runtime.Object{deployment},
			errorMatcher: nil,
		},
		{
			name:         "case 1: deployment does not exist",
			errorMatcher: IsNotFound,
		},
		{
			name:    "case 2: spec rejected",
			objects: []runtime.Object{deployment},
			reactor: func(action k8stesting.Action) (bool, runtime.Object, error) {
				errs := field.ErrorList{
					field.Invalid(field.NewPath("spec", "replicas"), 1000000, "exceeds quota"),
				}
				return true, nil, apierrors.NewInvalid(schema.GroupKind{Group: "autoscaling", Kind: "Scale"}, "scale-test", errs)
			},
			errorMatcher: IsCommandRejected,
		},
		{
			name:    "case 3: api unavailable",
			objects: []runtime.Object{deployment},
			reactor: func(action k8stesting.Action) (bool, runtime.Object, error) {
				return true, nil, apierrors.NewServiceUnavailable("etcd leader election")
			},
			errorMatcher: IsTransport,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k8sClient := fake.NewSimpleClientset(tc.objects...)
			if tc.reactor != nil {
				k8sClient.PrependReactor("patch", "deployments", tc.reactor)
			}

			c := CommandIssuerConfig{
				Logger:   microloggertest.New(),
				Provider: newKubernetesProvider(t, k8sClient),
			}

			issuer, err := NewCommandIssuer(c)
			if err != nil {
				t.Fatalf("error == %#v, want nil", err)
			}

			err = issuer.Issue(context.Background(), testRequest(3, time.Minute, 10*time.Second))

			switch {
			case err != nil && tc.errorMatcher == nil:
				t.Fatalf("error == %#v, want nil", err)
			case err == nil && tc.errorMatcher != nil:
				t.Fatalf("error == nil, want non-nil")
			case err != nil && !tc.errorMatcher(err):
				t.Fatalf("error == %#v, want matching", err)
			}

			var patches int
			for _, a := range k8sClient.Actions() {
				if a.GetVerb() == "patch" {
					patches++
				}
			}
			if patches != 1 {
				t.Fatalf("patches == %d, want 1", patches)
			}
		})
	}
}

func Test_Scaling_Request_Validate(t *testing.T) {
	testCases := []struct {
		name         string
		request      Request
		errorMatcher func(error) bool
	}{
		{
			name:         "case 0: valid",
			request:      testRequest(1000, 600*time.Second, 10*time.Second),
			errorMatcher: nil,
		},
		{
			name:         "case 1: zero replicas",
			request:      testRequest(0, 60*time.Second, 10*time.Second),
			errorMatcher: nil,
		},
		{
			name: "case 2: missing namespace",
			request: Request{
				Name:         "scale-test",
				Timeout:      time.Minute,
				PollInterval: time.Second,
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name: "case 3: missing name",
			request: Request{
				Namespace:    "scale-test",
				Timeout:      time.Minute,
				PollInterval: time.Second,
			},
			errorMatcher: IsInvalidConfig,
		},
		{
			name:         "case 4: negative replicas",
			request:      testRequest(-1, 60*time.Second, 10*time.Second),
			errorMatcher: IsInvalidConfig,
		},
		{
			name:         "case 5: zero interval",
			request:      testRequest(1, 60*time.Second, 0),
			errorMatcher: IsInvalidConfig,
		},
		{
			name:         "case 6: timeout below interval",
			request:      testRequest(1, 5*time.Second, 10*time.Second),
			errorMatcher: IsInvalidConfig,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.request.Validate()

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

func Test_Scaling_State(t *testing.T) {
	states := []State{
		StateNotStarted,
		StateResourceVerified,
		StateScaleIssued,
		StateReplicasConverged,
		StateNodesReady,
		StatePassed,
		StateFailed,
	}

	for i, s := range states {
		if s.String() == "Unknown" {
			t.Fatalf("state %d has no name", i)
		}
		if s.Terminal() != (s == StatePassed || s == StateFailed) {
			t.Fatalf("state %s terminal == %v", s, s.Terminal())
		}
	}
}
