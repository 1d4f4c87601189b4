package logging

import "log/slog"

// options is a struct that contains options for the logging middleware.
type options struct {
	level  slog.Level
	logger *slog.Logger
}

// Option is a type that is used to set options for the logging middleware.
type Option func(*options)

// WithLevel sets the level of the request log lines. Server errors are always logged as errors.
// The default level is debug.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithLogger sets the logger, the default logger of slog is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts ...Option) options {
	o := options{
		level: slog.LevelDebug,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
