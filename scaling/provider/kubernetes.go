package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/clock"
	"k8s.io/client-go/kubernetes"
)

const (
	scaleSubresource = "scale"
)

type KubernetesConfig struct {
	Clock     clock.PassiveClock
	K8sClient kubernetes.Interface
	Logger    micrologger.Logger
}

// Kubernetes implements Interface against deployments and nodes of a
// Kubernetes cluster.
type Kubernetes struct {
	clock     clock.PassiveClock
	k8sClient kubernetes.Interface
	logger    micrologger.Logger
}

func NewKubernetes(config KubernetesConfig) (*Kubernetes, error) {
	if config.Clock == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Clock must not be empty", config)
	}
	if config.K8sClient == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.K8sClient must not be empty", config)
	}
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}

	k := &Kubernetes{
		clock:     config.Clock,
		k8sClient: config.K8sClient,
		logger:    config.Logger,
	}

	return k, nil
}

func (k *Kubernetes) GetResourceStatus(ctx context.Context, namespace, name string) (ResourceStatus, error) {
	d, err := k.k8sClient.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return ResourceStatus{}, microerror.Maskf(notFoundError, "deployment %#q in namespace %#q", name, namespace)
	} else if err != nil {
		return ResourceStatus{}, microerror.Mask(err)
	}

	s := ResourceStatus{
		ObservedReplicas:  d.Status.Replicas,
		AvailableReplicas: d.Status.AvailableReplicas,
		CapturedAt:        k.clock.Now(),
	}

	return s, nil
}

func (k *Kubernetes) ListNodes(ctx context.Context) (ClusterSnapshot, error) {
	l, err := k.k8sClient.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return ClusterSnapshot{}, microerror.Mask(err)
	}

	s := ClusterSnapshot{
		CapturedAt: k.clock.Now(),
	}
	for _, n := range l.Items {
		s.Nodes = append(s.Nodes, NodeStatus{
			ID:    n.Name,
			Ready: isNodeReady(n),
		})
	}

	return s, nil
}

func (k *Kubernetes) PatchReplicaCount(ctx context.Context, namespace, name string, count int32) error {
	patches := []Patch{
		{
			Op:    "replace",
			Path:  "/spec/replicas",
			Value: count,
		},
	}

	b, err := json.Marshal(patches)
	if err != nil {
		return microerror.Mask(err)
	}

	k.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("patching scale of deployment %#q in namespace %#q to %d replicas", name, namespace, count))

	_, err = k.k8sClient.AppsV1().Deployments(namespace).Patch(ctx, name, types.JSONPatchType, b, metav1.PatchOptions{}, scaleSubresource)
	if apierrors.IsNotFound(err) {
		return microerror.Maskf(notFoundError, "deployment %#q in namespace %#q", name, namespace)
	} else if apierrors.IsInvalid(err) || apierrors.IsBadRequest(err) {
		return microerror.Maskf(commandRejectedError, "scaling deployment %#q to %d replicas: %s", name, count, err.Error())
	} else if err != nil {
		return microerror.Mask(err)
	}

	return nil
}

func isNodeReady(n corev1.Node) bool {
	for _, c := range n.Status.Conditions {
		if c.Type == corev1.NodeReady {
			return c.Status == corev1.ConditionTrue
		}
	}

	return false
}
