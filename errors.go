package larch

import "errors"

var (
	// ErrClosed is returned when Resolve or CreateScope is called on a
	// provider that has already been closed.
	ErrClosed = errors.New("provider closed")

	// ErrConstruction is returned when no registered constructor for an
	// implementation has a fully satisfiable parameter set, or when the
	// selected constructor itself fails. The error message names the
	// implementation.
	ErrConstruction = errors.New("construction failed")

	// ErrCaptiveDependency is returned by a validating provider when a
	// scoped service would be captured by the root scope, either inside a
	// singleton's dependency subtree or by resolving it from the root
	// directly. The error message includes the resolution chain.
	ErrCaptiveDependency = errors.New("captive dependency")

	// ErrCircularDependency is returned when resolution re-enters a key
	// already under construction. The error message includes the full
	// chain.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrInvalidConstructor is returned at registration time when a
	// constructor is not a function, has an unsupported signature, or does
	// not produce the registered service type.
	ErrInvalidConstructor = errors.New("invalid constructor")
)
