package recovery

import "net/http"

// options is a struct that contains options for the recovery middleware.
// It uses the functional options pattern for flexible configuration.
type options struct {
	exposeStackTrace bool
	logPrefix        string
	errCallback      func(err error, stack []byte, w http.ResponseWriter, r *http.Request)
}

// Option is a type that is used to set options for the recovery middleware.
type Option func(*options)

// WithErrCallback replaces the default JSON error response.
// The callback runs in a deferred function, it must not panic.
func WithErrCallback(fn func(err error, stack []byte, w http.ResponseWriter, r *http.Request)) Option {
	return func(o *options) {
		o.errCallback = fn
	}
}

// WithLogPrefix sets a prefix that is prepended to each logged panic message.
func WithLogPrefix(prefix string) Option {
	return func(o *options) {
		o.logPrefix = prefix
	}
}

// WithExposeStackTrace includes the stack trace in the default error response.
// The default value is false.
func WithExposeStackTrace(exposeStackTrace bool) Option {
	return func(o *options) {
		o.exposeStackTrace = exposeStackTrace
	}
}

func newOptions(opts ...Option) options {
	o := options{}

	for _, opt := range opts {
		opt(&o)
	}

	if o.errCallback == nil {
		o.errCallback = defaultErrCallback(o.exposeStackTrace)
	}

	return o
}
