package ownhttp

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Options configure the client returned by [NewWithOptions]
type Options struct {
	// UserAgent is sent with every request. Defaults to [DefaultUserAgent]
	UserAgent string
	// Timeout is the timeout of a single request (0 means no timeout)
	Timeout time.Duration
	// RateLimit limits requests per second (0 means unlimited)
	RateLimit float64
}

// New returns a new http.Client with the AddHeaderTransport (setting the User-Agent header)
func New() *http.Client {
	return &http.Client{Transport: NewAddHeaderTransport(nil, DefaultUserAgent)}
}

// NewWithOptions returns a new http.Client with a per request timeout and an optional throttle
func NewWithOptions(opts Options) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		transport = NewThrottleTransport(transport, rate.NewLimiter(rate.Limit(opts.RateLimit), burst))
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &http.Client{
		Transport: NewAddHeaderTransport(transport, userAgent),
		Timeout:   opts.Timeout,
	}
}
