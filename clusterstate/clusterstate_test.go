package clusterstate

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/backoff"
	"github.com/giantswarm/micrologger"
	"github.com/giantswarm/micrologger/microloggertest"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func Test_ClusterState_Test(t *testing.T) {
	testCases := []struct {
		name                  string
		failures              int
		expectedCalls         int
		expectedNotifications int
		errorMatcher          func(error) bool
	}{
		{
			name:                  "case 0: api reachable",
			failures:              0,
			expectedCalls:         1,
			expectedNotifications: 0,
			errorMatcher:          nil,
		},
		{
			name:                  "case 1: api reachable on the last attempt",
			failures:              2,
			expectedCalls:         3,
			expectedNotifications: 2,
			errorMatcher:          nil,
		},
		{
			name:                  "case 2: api reachable after one failure",
			failures:              1,
			expectedCalls:         2,
			expectedNotifications: 1,
			errorMatcher:          nil,
		},
		{
			name:                  "case 3: api unreachable",
			failures:              10,
			expectedCalls:         3,
			expectedNotifications: 2,
			errorMatcher:          IsUnreachable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k8sClient := fake.NewSimpleClientset()

			var calls int
			k8sClient.PrependReactor("list", "nodes", func(action k8stesting.Action) (bool, runtime.Object, error) {
				calls++
				if calls <= tc.failures {
					return true, nil, apierrors.NewServiceUnavailable("apiserver starting")
				}
				return false, nil, nil
			})

			var b bytes.Buffer
			logger, err := micrologger.New(micrologger.Config{IOWriter: &b})
			if err != nil {
				t.Fatalf("error == %#v, want nil", err)
			}

			c := Config{
				Backoff:   backoff.NewMaxRetries(3, time.Millisecond),
				K8sClient: k8sClient,
				Logger:    logger,
			}

			s, err := New(c)
			if err != nil {
				t.Fatalf("error == %#v, want nil", err)
			}

			err = s.Test(context.Background())

			switch {
			case err != nil && tc.errorMatcher == nil:
				t.Fatalf("error == %#v, want nil", err)
			case err == nil && tc.errorMatcher != nil:
				t.Fatalf("error == nil, want non-nil")
			case err != nil && !tc.errorMatcher(err):
				t.Fatalf("error == %#v, want matching", err)
			}

			if calls != tc.expectedCalls {
				t.Fatalf("calls == %d, want %d", calls, tc.expectedCalls)
			}

			notifications := strings.Count(b.String(), "kubernetes api not reachable")
			if notifications != tc.expectedNotifications {
				t.Fatalf("notifications == %d, want %d", notifications, tc.expectedNotifications)
			}
		})
	}
}

func Test_ClusterState_New(t *testing.T) {
	_, err := New(Config{Logger: microloggertest.New()})
	if !IsInvalidConfig(err) {
		t.Fatalf("error == %#v, want matching", err)
	}

	_, err = New(Config{K8sClient: fake.NewSimpleClientset()})
	if !IsInvalidConfig(err) {
		t.Fatalf("error == %#v, want matching", err)
	}
}
