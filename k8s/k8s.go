// Package k8s builds the Kubernetes clients from a kubeconfig file or the in
// cluster service account, with optional proxy and TLS verification settings.
package k8s

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/giantswarm/k8sclient/v4/pkg/k8sclient"
	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	ModeInCluster = "in-cluster"
	ModeLocal     = "local"
)

type Config struct {
	Logger micrologger.Logger

	// KubeConfig is the kubeconfig path used in local mode. The default
	// loading rules apply when it is empty.
	KubeConfig string
	Mode       string
	Proxy      string
	VerifySSL  bool
}

// NewRESTConfig returns the rest config for the configured mode.
func NewRESTConfig(config Config) (*rest.Config, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}

	var err error

	var restConfig *rest.Config
	switch config.Mode {
	case ModeLocal:
		config.Logger.Log("level", "debug", "message", "loading kubeconfig for local setup")

		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		if config.KubeConfig != "" {
			rules.ExplicitPath = config.KubeConfig
		}

		restConfig, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
		if err != nil {
			return nil, microerror.Mask(err)
		}
	case ModeInCluster:
		config.Logger.Log("level", "debug", "message", "loading in-cluster configuration")

		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, microerror.Mask(err)
		}
	default:
		return nil, microerror.Maskf(invalidConfigError, "%T.Mode must be %#q or %#q, got %#q", config, ModeLocal, ModeInCluster, config.Mode)
	}

	err = configure(restConfig, config)
	if err != nil {
		return nil, microerror.Mask(err)
	}

	return restConfig, nil
}

// NewClients returns the Kubernetes clients for the configured mode.
func NewClients(config Config) (k8sclient.Interface, error) {
	restConfig, err := NewRESTConfig(config)
	if err != nil {
		return nil, microerror.Mask(err)
	}

	var k8sClients *k8sclient.Clients
	{
		c := k8sclient.ClientsConfig{
			Logger:     config.Logger,
			RestConfig: restConfig,
		}

		k8sClients, err = k8sclient.NewClients(c)
		if err != nil {
			return nil, microerror.Mask(err)
		}
	}

	config.Logger.Log("level", "info", "message", fmt.Sprintf("initialized kubernetes clients for %#q", restConfig.Host))

	return k8sClients, nil
}

// configure applies proxy and TLS verification settings to restConfig.
func configure(restConfig *rest.Config, config Config) error {
	if !config.VerifySSL {
		config.Logger.Log("level", "warning", "message", "tls verification of the kubernetes api is disabled")

		restConfig.TLSClientConfig.Insecure = true
		restConfig.TLSClientConfig.CAFile = ""
		restConfig.TLSClientConfig.CAData = nil
	}

	if config.Proxy != "" {
		u, err := url.Parse(config.Proxy)
		if err != nil {
			return microerror.Maskf(invalidConfigError, "%T.Proxy %#q: %s", config, config.Proxy, err.Error())
		}
		if u.Scheme == "" || u.Host == "" {
			return microerror.Maskf(invalidConfigError, "%T.Proxy %#q must be an absolute URL", config, config.Proxy)
		}

		restConfig.WrapTransport = proxyTransport(u, restConfig.WrapTransport)
	}

	return nil
}

// proxyTransport routes the base transport created by client-go through the
// proxy at u. It must run before any other wrapper.
func proxyTransport(u *url.URL, next func(http.RoundTripper) http.RoundTripper) func(http.RoundTripper) http.RoundTripper {
	return func(rt http.RoundTripper) http.RoundTripper {
		if t, ok := rt.(*http.Transport); ok {
			t = t.Clone()
			t.Proxy = http.ProxyURL(u)
			rt = t
		}
		if next != nil {
			rt = next(rt)
		}

		return rt
	}
}
