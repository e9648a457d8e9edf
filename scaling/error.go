package scaling

import "github.com/giantswarm/microerror"

var commandRejectedError = &microerror.Error{
	Kind: "commandRejectedError",
}

// IsCommandRejected asserts commandRejectedError.
func IsCommandRejected(err error) bool {
	return microerror.Cause(err) == commandRejectedError
}

var convergenceTimeoutError = &microerror.Error{
	Kind: "convergenceTimeoutError",
}

// IsConvergenceTimeout asserts convergenceTimeoutError.
func IsConvergenceTimeout(err error) bool {
	return microerror.Cause(err) == convergenceTimeoutError
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

var transportError = &microerror.Error{
	Kind: "transportError",
}

// IsTransport asserts transportError.
func IsTransport(err error) bool {
	return microerror.Cause(err) == transportError
}
