// Package readiness provides the predicates deciding whether a status
// snapshot satisfies a scaling goal, and adapters turning them into
// convergence.Predicate values backed by a provider.
package readiness

import (
	"context"

	"github.com/giantswarm/microerror"

	"github.com/giantswarm/scaletests/convergence"
	"github.com/giantswarm/scaletests/scaling/provider"
)

// ResourcePredicate decides on a deployment status snapshot. Implementations
// must be pure.
type ResourcePredicate func(s provider.ResourceStatus) bool

// NodePredicate decides on a cluster snapshot. Implementations must be pure.
type NodePredicate func(s provider.ClusterSnapshot) bool

// ReplicaCount is done when both observed and available replicas equal
// expected.
func ReplicaCount(expected int32) ResourcePredicate {
	return func(s provider.ResourceStatus) bool {
		return s.ObservedReplicas == expected && s.AvailableReplicas == expected
	}
}

// AllNodesReady is done when every node of the snapshot is ready. A snapshot
// without nodes is considered ready.
func AllNodesReady() NodePredicate {
	return func(s provider.ClusterSnapshot) bool {
		for _, n := range s.Nodes {
			if !n.Ready {
				return false
			}
		}

		return true
	}
}

// All is done when every given predicate is done. All without predicates is
// always done.
func All(predicates ...ResourcePredicate) ResourcePredicate {
	return func(s provider.ResourceStatus) bool {
		for _, p := range predicates {
			if !p(s) {
				return false
			}
		}

		return true
	}
}

// Any is done when at least one of the given predicates is done.
func Any(predicates ...ResourcePredicate) ResourcePredicate {
	return func(s provider.ResourceStatus) bool {
		for _, p := range predicates {
			if p(s) {
				return true
			}
		}

		return false
	}
}

// ReadyNodes returns the IDs of all ready nodes in snapshot order.
func ReadyNodes(s provider.ClusterSnapshot) []string {
	var ids []string
	for _, n := range s.Nodes {
		if n.Ready {
			ids = append(ids, n.ID)
		}
	}

	return ids
}

// NotReadyNodes returns the IDs of all nodes not ready in snapshot order.
func NotReadyNodes(s provider.ClusterSnapshot) []string {
	var ids []string
	for _, n := range s.Nodes {
		if !n.Ready {
			ids = append(ids, n.ID)
		}
	}

	return ids
}

// ForResource samples the status of the given deployment on every evaluation
// and applies p to it.
func ForResource(source provider.Interface, namespace, name string, p ResourcePredicate) convergence.Predicate {
	return func(ctx context.Context) (bool, interface{}, error) {
		s, err := source.GetResourceStatus(ctx, namespace, name)
		if err != nil {
			return false, nil, microerror.Mask(err)
		}

		return p(s), s, nil
	}
}

// ForNodes lists the cluster nodes on every evaluation and applies p to the
// snapshot.
func ForNodes(source provider.Interface, p NodePredicate) convergence.Predicate {
	return func(ctx context.Context) (bool, interface{}, error) {
		s, err := source.ListNodes(ctx)
		if err != nil {
			return false, nil, microerror.Mask(err)
		}

		return p(s), s, nil
	}
}
