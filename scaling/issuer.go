package scaling

import (
	"context"
	"fmt"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/giantswarm/scaletests/scaling/provider"
)

type CommandIssuerConfig struct {
	Logger   micrologger.Logger
	Provider provider.Interface
}

// CommandIssuer sends exactly one replica count patch per Issue call. It
// neither retries nor deduplicates.
type CommandIssuer struct {
	logger   micrologger.Logger
	provider provider.Interface
}

func NewCommandIssuer(config CommandIssuerConfig) (*CommandIssuer, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.Provider == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Provider must not be empty", config)
	}

	c := &CommandIssuer{
		logger:   config.Logger,
		provider: config.Provider,
	}

	return c, nil
}

func (c *CommandIssuer) Issue(ctx context.Context, request Request) error {
	c.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("scaling deployment %#q in namespace %#q to %d replicas", request.Name, request.Namespace, request.DesiredReplicas))

	err := c.provider.PatchReplicaCount(ctx, request.Namespace, request.Name, request.DesiredReplicas)
	if provider.IsNotFound(err) {
		return microerror.Maskf(notFoundError, "deployment %#q in namespace %#q", request.Name, request.Namespace)
	} else if provider.IsCommandRejected(err) {
		return microerror.Maskf(commandRejectedError, "%s", err.Error())
	} else if err != nil {
		return microerror.Maskf(transportError, "%s", err.Error())
	}

	c.logger.LogCtx(ctx, "level", "debug", "message", fmt.Sprintf("scaled deployment %#q in namespace %#q to %d replicas", request.Name, request.Namespace, request.DesiredReplicas))

	return nil
}
