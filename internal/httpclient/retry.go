package httpclient

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RetryConfig controls transport-level retries.
type RetryConfig struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultRetryConfig returns a short exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 3 * time.Second,
	}
}

// newRetryTransport wraps base with retryablehttp. Retries honour
// Retry-After on 429 and 503 responses.
func newRetryTransport(base http.RoundTripper, cfg RetryConfig) http.RoundTripper {
	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{Transport: base}
	c.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		c.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		c.RetryWaitMax = cfg.RetryWaitMax
	}
	c.Logger = nil
	// After the last attempt the final response is returned as is.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &retryablehttp.RoundTripper{Client: c}
}
