// Package providertest provides a scripted provider.Interface for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/giantswarm/scaletests/scaling/provider"
)

type Config struct {
	// Statuses is replayed by GetResourceStatus. The last entry repeats once
	// the sequence is exhausted.
	Statuses []provider.ResourceStatus
	// StatusErrors is indexed by GetResourceStatus call. A non-nil entry is
	// returned instead of the status of that call.
	StatusErrors []error

	// Snapshots is replayed by ListNodes. The last entry repeats once the
	// sequence is exhausted.
	Snapshots []provider.ClusterSnapshot
	// SnapshotErrors is indexed by ListNodes call.
	SnapshotErrors []error

	PatchError error
}

// Patch is one recorded PatchReplicaCount call.
type Patch struct {
	Namespace string
	Name      string
	Count     int32
}

type Provider struct {
	mutex sync.Mutex

	statuses       []provider.ResourceStatus
	statusErrors   []error
	snapshots      []provider.ClusterSnapshot
	snapshotErrors []error
	patchError     error

	statusCalls   int
	snapshotCalls int
	patches       []Patch
}

func New(config Config) *Provider {
	p := &Provider{
		statuses:       config.Statuses,
		statusErrors:   config.StatusErrors,
		snapshots:      config.Snapshots,
		snapshotErrors: config.SnapshotErrors,
		patchError:     config.PatchError,
	}

	return p
}

func (p *Provider) GetResourceStatus(ctx context.Context, namespace, name string) (provider.ResourceStatus, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	i := p.statusCalls
	p.statusCalls++

	if i < len(p.statusErrors) && p.statusErrors[i] != nil {
		return provider.ResourceStatus{}, p.statusErrors[i]
	}
	if len(p.statuses) == 0 {
		return provider.ResourceStatus{}, nil
	}
	if i >= len(p.statuses) {
		i = len(p.statuses) - 1
	}

	return p.statuses[i], nil
}

func (p *Provider) ListNodes(ctx context.Context) (provider.ClusterSnapshot, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	i := p.snapshotCalls
	p.snapshotCalls++

	if i < len(p.snapshotErrors) && p.snapshotErrors[i] != nil {
		return provider.ClusterSnapshot{}, p.snapshotErrors[i]
	}
	if len(p.snapshots) == 0 {
		return provider.ClusterSnapshot{}, nil
	}
	if i >= len(p.snapshots) {
		i = len(p.snapshots) - 1
	}

	return p.snapshots[i], nil
}

func (p *Provider) PatchReplicaCount(ctx context.Context, namespace, name string, count int32) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.patches = append(p.patches, Patch{Namespace: namespace, Name: name, Count: count})

	return p.patchError
}

// StatusCalls returns the number of GetResourceStatus calls so far.
func (p *Provider) StatusCalls() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.statusCalls
}

// SnapshotCalls returns the number of ListNodes calls so far.
func (p *Provider) SnapshotCalls() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.snapshotCalls
}

// Patches returns a copy of all recorded PatchReplicaCount calls.
func (p *Provider) Patches() []Patch {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]Patch(nil), p.patches...)
}
