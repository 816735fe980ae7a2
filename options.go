package larch

import "log/slog"

// config is shared by every scope of one container.
type config struct {
	validate bool
	logger   *slog.Logger
}

// Option configures a container during [Collection.Build].
type Option func(*config)

// WithValidation enables scope validation. A validating provider rejects
// scoped services that would be captured by the root scope — either resolved
// inside a singleton's dependency subtree or requested from the root scope
// directly — with [ErrCaptiveDependency] instead of caching them forever.
func WithValidation() Option {
	return func(c *config) {
		c.validate = true
	}
}

// WithLogger sets the logger used for resolution and disposal diagnostics.
// Events are emitted at debug level. The default is [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
