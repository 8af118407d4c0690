// Package llm defines the provider interface for remote text generation,
// the error taxonomy for remote failures, and the bounded retry policy.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/0vg/GoodGit/internal/prompt"
)

// MaxTokensOutput bounds the completion size. Commit messages are short.
const MaxTokensOutput = 1024

// RawMessage wraps untrusted model output. It is a distinct type so raw text
// cannot be mistaken for a validated commit message downstream.
type RawMessage struct {
	Text string
}

// Provider performs one request against a text-generation endpoint.
type Provider interface {
	Generate(ctx context.Context, payload prompt.Payload) (RawMessage, error)
}

// AuthError means the credential was rejected. Never retried.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Body)
}

// RateLimitError means the backend is throttling us.
type RateLimitError struct {
	Status int
	Body   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (status %d): %s", e.Status, e.Body)
}

// TransportError wraps network-level failures: unreachable host, timeout,
// canceled context.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is any other non-2xx response, body included.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API request failed with status code %d: %s", e.Status, e.Body)
}

// ClassifyStatus maps a non-2xx response to its error kind. Providers share
// this so every backend reports the same taxonomy.
func ClassifyStatus(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Body: body}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Status: status, Body: body}
	default:
		return &UpstreamError{Status: status, Body: body}
	}
}

// Retryable reports whether the failure class is transient. Only rate limits
// and transport failures qualify; auth and upstream errors never do.
func Retryable(err error) bool {
	var rate *RateLimitError
	var transport *TransportError
	return errors.As(err, &rate) || errors.As(err, &transport)
}

// RetryPolicy bounds automatic retries. A stuck loop must never keep a user
// waiting at the terminal, so MaxRetries is small and there is no exponential
// growth.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

type retrying struct {
	provider Provider
	policy   RetryPolicy
}

// WithRetry wraps a provider with the bounded retry policy. Retries apply
// only to transient failures; the last error is returned unchanged so its
// kind stays inspectable.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	if p == nil {
		panic("llm provider cannot be nil")
	}
	return &retrying{provider: p, policy: policy}
}

func (r *retrying) Generate(ctx context.Context, payload prompt.Payload) (RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Int("attempt", attempt).Msg("Retrying model request")
			select {
			case <-ctx.Done():
				return RawMessage{}, &TransportError{Err: ctx.Err()}
			case <-time.After(r.policy.Delay):
			}
		}

		msg, err := r.provider.Generate(ctx, payload)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if !Retryable(err) {
			break
		}
	}
	return RawMessage{}, lastErr
}
