package provider

import (
	"context"
	"time"
)

// Interface is the narrow capability set the scaling scenario needs from the
// cluster. Implementations must not retry on their own.
type Interface interface {
	// GetResourceStatus returns a point in time snapshot of the replica status
	// of the given deployment. The returned error matches IsNotFound in case
	// the deployment does not exist.
	GetResourceStatus(ctx context.Context, namespace, name string) (ResourceStatus, error)
	// ListNodes returns the readiness of all nodes of the cluster, captured
	// with a single list call.
	ListNodes(ctx context.Context) (ClusterSnapshot, error)
	// PatchReplicaCount sends exactly one mutation setting the desired replica
	// count of the given deployment. The returned error matches IsNotFound or
	// IsCommandRejected depending on the API response.
	PatchReplicaCount(ctx context.Context, namespace, name string, count int32) error
}

type Patch struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// ResourceStatus is the replica status of a deployment as reported by the
// API at CapturedAt.
type ResourceStatus struct {
	ObservedReplicas  int32
	AvailableReplicas int32
	CapturedAt        time.Time
}

type NodeStatus struct {
	ID    string
	Ready bool
}

// ClusterSnapshot holds the node readiness of one list call.
type ClusterSnapshot struct {
	Nodes      []NodeStatus
	CapturedAt time.Time
}
