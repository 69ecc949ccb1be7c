package toncenter

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultTimeout bounds a submission when EndpointConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// EndpointConfig says where and how long to wait. It is supplied per call.
type EndpointConfig struct {
	// Endpoint is the full JSON-RPC URL, e.g.
	// https://testnet.toncenter.com/api/v2/jsonRPC
	Endpoint string
	// Timeout bounds the whole request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Validate checks the endpoint is an absolute https URL and the timeout is
// not negative. It returns a KindInvalidConfig *Error on failure.
func (c EndpointConfig) Validate() error {
	if c.Endpoint == "" {
		return newError(KindInvalidConfig, "endpoint is required", nil)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return newError(KindInvalidConfig, fmt.Sprintf("endpoint %q does not parse", c.Endpoint), err)
	}
	if u.Scheme != "https" {
		return newError(KindInvalidConfig, fmt.Sprintf("endpoint %q must use https", c.Endpoint), nil)
	}
	if u.Host == "" {
		return newError(KindInvalidConfig, fmt.Sprintf("endpoint %q has no host", c.Endpoint), nil)
	}
	if c.Timeout < 0 {
		return newError(KindInvalidConfig, fmt.Sprintf("timeout %s must be positive", c.Timeout), nil)
	}
	return nil
}

func (c EndpointConfig) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
