// Package clusterstate checks that the Kubernetes cluster is running before
// any scenario is executed.
package clusterstate

import (
	"context"
	"fmt"
	"time"

	"github.com/giantswarm/backoff"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

type Config struct {
	// Backoff defaults to a constant backoff with backoff.ShortMaxWait and
	// backoff.ShortMaxInterval.
	Backoff   backoff.Interface
	K8sClient kubernetes.Interface
	Logger    micrologger.Logger
}

type ClusterState struct {
	backoff   backoff.Interface
	k8sClient kubernetes.Interface
	logger    micrologger.Logger
}

func New(config Config) (*ClusterState, error) {
	if config.Backoff == nil {
		config.Backoff = backoff.NewConstant(backoff.ShortMaxWait, backoff.ShortMaxInterval)
	}
	if config.K8sClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.K8sClient must not be empty", config)
	}
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}

	s := &ClusterState{
		backoff:   config.Backoff,
		k8sClient: config.K8sClient,
		logger:    config.Logger,
	}

	return s, nil
}

// Test waits for the Kubernetes API to answer a node list request.
func (c *ClusterState) Test(ctx context.Context) error {
	c.logger.LogCtx(ctx, "level", "debug", "message", "verifying kubernetes cluster is running")

	var nodes int
	o := func() error {
		l, err := c.k8sClient.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return microerror.Maskf(unreachableError, "%s", err.Error())
		}
		nodes = len(l.Items)

		return nil
	}

	n := func(err error, delay time.Duration) {
		c.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("kubernetes api not reachable, retrying in %s", delay), "stack", fmt.Sprintf("%#v", err))
	}

	err := backoff.RetryNotify(o, c.backoff, n)
	if err != nil {
		return microerror.Mask(err)
	}

	c.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("kubernetes cluster is running with %d nodes", nodes))

	return nil
}
