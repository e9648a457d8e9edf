package clusterstate

import "github.com/giantswarm/microerror"

var invalidConfigError = &microerror.Error{
	Kind: "invalidConfigError",
}

// IsInvalidConfig asserts invalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == invalidConfigError
}

var unreachableError = &microerror.Error{
	Kind: "unreachableError",
}

// IsUnreachable asserts unreachableError.
func IsUnreachable(err error) bool {
	return microerror.Cause(err) == unreachableError
}
