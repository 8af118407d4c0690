package common

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

type ClientConfig struct {
	Timeout time.Duration
	Headers map[string]string
}

func DefaultConfig() ClientConfig {
	return ClientConfig{
		Timeout: DefaultTimeout,
		Headers: make(map[string]string),
	}
}

// NewHTTPClient builds a client with a finite timeout. An unbounded network
// call is never acceptable here, so a zero timeout falls back to the default.
func NewHTTPClient(config ClientConfig) *http.Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

func NewRequest(ctx context.Context, method, url string, body []byte, config ClientConfig) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	// Set common headers
	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}
