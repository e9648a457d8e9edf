package provider

import "github.com/giantswarm/microerror"

var commandRejectedError = &microerror.Error{
	Kind: "commandRejectedError",
}

// IsCommandRejected asserts commandRejectedError.
func IsCommandRejected(err error) bool {
	return microerror.Cause(err) == commandRejectedError
}

var invalidConfigError = &microerror.Error{
	Kind: "invalidConfigError",
}

// IsInvalidConfig asserts invalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == invalidConfigError
}

var notFoundError = &microerror.Error{
	Kind: "notFoundError",
}

// IsNotFound asserts notFoundError.
func IsNotFound(err error) bool {
	return microerror.Cause(err) == notFoundError
}
