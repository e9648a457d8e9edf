// Package command implements the scaletest command line interface.
package command

import (
	"io"

	"github.com/giantswarm/microerror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	settings "github.com/giantswarm/scaletests/config"
	"github.com/giantswarm/scaletests/k8s"
)

type Config struct {
	Fs afero.Fs
	// NewK8sClient defaults to building the clients with k8s.NewClients.
	NewK8sClient func(config k8s.Config) (kubernetes.Interface, error)
	Stderr       io.Writer
	Stdout       io.Writer
}

type rootFlags struct {
	config string
}

func New(config Config) (*cobra.Command, error) {
	if config.Fs == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Fs must not be empty", config)
	}
	if config.NewK8sClient == nil {
		config.NewK8sClient = newK8sClient
	}
	if config.Stderr == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Stderr must not be empty", config)
	}
	if config.Stdout == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Stdout must not be empty", config)
	}

	flags := &rootFlags{}

	c := &cobra.Command{
		Use:           "scaletest",
		Short:         "Verify that deployment scaling converges within a bounded time.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	c.SetOut(config.Stdout)
	c.SetErr(config.Stderr)

	c.PersistentFlags().StringVar(&flags.config, "config", settings.DefaultPath, "Path to the TOML settings file.")

	c.AddCommand(newRunCommand(config, flags))
	c.AddCommand(newValidateCommand(config, flags))

	return c, nil
}

func newK8sClient(config k8s.Config) (kubernetes.Interface, error) {
	clients, err := k8s.NewClients(config)
	if err != nil {
		return nil, microerror.Mask(err)
	}

	return clients.K8sClient(), nil
}
