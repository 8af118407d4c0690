package llm_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0vg/GoodGit/internal/llm"
	"github.com/0vg/GoodGit/internal/prompt"
)

// scriptedProvider fails with the queued errors before succeeding.
type scriptedProvider struct {
	calls int
	errs  []error
	text  string
}

func (p *scriptedProvider) Generate(_ context.Context, _ prompt.Payload) (llm.RawMessage, error) {
	p.calls++
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return llm.RawMessage{}, err
		}
	}
	return llm.RawMessage{Text: p.text}, nil
}

func policy() llm.RetryPolicy {
	return llm.RetryPolicy{MaxRetries: 1, Delay: time.Millisecond}
}

func TestWithRetryRecoversFromOneRateLimit(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{&llm.RateLimitError{Status: http.StatusTooManyRequests}},
		text: "feat: add thing",
	}

	msg, err := llm.WithRetry(p, policy()).Generate(context.Background(), prompt.Payload{})
	require.NoError(t, err)
	assert.Equal(t, "feat: add thing", msg.Text)
	assert.Equal(t, 2, p.calls, "exactly one retry")
}

func TestWithRetryRecoversFromOneTransportFailure(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{&llm.TransportError{Err: errors.New("connection refused")}},
		text: "fix: reconnect",
	}

	msg, err := llm.WithRetry(p, policy()).Generate(context.Background(), prompt.Payload{})
	require.NoError(t, err)
	assert.Equal(t, "fix: reconnect", msg.Text)
	assert.Equal(t, 2, p.calls)
}

func TestWithRetryNeverRetriesAuthErrors(t *testing.T) {
	authErr := &llm.AuthError{Status: http.StatusUnauthorized}
	p := &scriptedProvider{errs: []error{authErr, nil}}

	_, err := llm.WithRetry(p, policy()).Generate(context.Background(), prompt.Payload{})
	var got *llm.AuthError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 1, p.calls)
}

func TestWithRetryNeverRetriesUpstreamErrors(t *testing.T) {
	p := &scriptedProvider{errs: []error{&llm.UpstreamError{Status: http.StatusBadRequest}, nil}}

	_, err := llm.WithRetry(p, policy()).Generate(context.Background(), prompt.Payload{})
	var got *llm.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 1, p.calls)
}

func TestWithRetryStopsAfterTheBound(t *testing.T) {
	p := &scriptedProvider{errs: []error{
		&llm.RateLimitError{Status: http.StatusTooManyRequests},
		&llm.RateLimitError{Status: http.StatusTooManyRequests},
		&llm.RateLimitError{Status: http.StatusTooManyRequests},
	}}

	_, err := llm.WithRetry(p, policy()).Generate(context.Background(), prompt.Payload{})
	var got *llm.RateLimitError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 2, p.calls, "initial attempt plus one retry")
}

func TestWithRetryHonorsContextDuringBackoff(t *testing.T) {
	p := &scriptedProvider{errs: []error{
		&llm.TransportError{Err: errors.New("timeout")},
		nil,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := llm.WithRetry(p, llm.RetryPolicy{MaxRetries: 1, Delay: time.Minute}).Generate(ctx, prompt.Payload{})
	var transport *llm.TransportError
	require.ErrorAs(t, err, &transport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.calls, "no second request after cancellation")
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &llm.RateLimitError{Status: 429}, true},
		{"transport", &llm.TransportError{Err: errors.New("dial tcp: timeout")}, true},
		{"auth", &llm.AuthError{Status: 401}, false},
		{"upstream", &llm.UpstreamError{Status: 500}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.Retryable(tt.err))
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	assert.IsType(t, &llm.AuthError{}, llm.ClassifyStatus(http.StatusUnauthorized, ""))
	assert.IsType(t, &llm.AuthError{}, llm.ClassifyStatus(http.StatusForbidden, ""))
	assert.IsType(t, &llm.RateLimitError{}, llm.ClassifyStatus(http.StatusTooManyRequests, ""))
	assert.IsType(t, &llm.UpstreamError{}, llm.ClassifyStatus(http.StatusInternalServerError, "boom"))
	assert.IsType(t, &llm.UpstreamError{}, llm.ClassifyStatus(http.StatusBadRequest, "bad"))
}
