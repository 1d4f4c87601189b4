package tracing

// options is a struct that contains options for the tracing middleware.
type options struct {
	upstreamHeader   string
	headerIdentifier string
}

// Option is a type that is used to set options for the tracing middleware.
type Option func(*options)

// WithHeaderIdentifier specifies the response header that carries the request id.
// If the identifier is empty, the request id will not be added to the response headers.
func WithHeaderIdentifier(identifier string) Option {
	return func(o *options) {
		o.headerIdentifier = identifier
	}
}

// WithUpstreamHeader sets the request header that may carry an id generated by a proxy.
// If the header is missing, a new uuid is generated.
func WithUpstreamHeader(header string) Option {
	return func(o *options) {
		o.upstreamHeader = header
	}
}

func newOptions(opts ...Option) options {
	o := options{
		headerIdentifier: "X-Request-ID",
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
