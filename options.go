package litebind

import "log/slog"

// OpenOption configures Binding.Open.
type OpenOption func(*openOptions)

type openOptions struct {
	uri      bool
	readOnly bool
	logger   *slog.Logger
}

// WithURI controls whether the path may be a "file:" URI. Enabled by default.
func WithURI(enabled bool) OpenOption {
	return func(o *openOptions) { o.uri = enabled }
}

// WithReadOnly opens an existing database without write access.
func WithReadOnly() OpenOption {
	return func(o *openOptions) { o.readOnly = true }
}

// WithLogger overrides the Binding's logger for one connection.
func WithLogger(logger *slog.Logger) OpenOption {
	return func(o *openOptions) { o.logger = logger }
}
