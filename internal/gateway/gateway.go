// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway abstracts invocation of the generative-text backends.
// It owns the per-call timeout, the bounded retry policy with exponential
// backoff, and the classification of multi-agent unavailability that
// triggers the whole-request fallback to direct mode.
package gateway

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Defaults applied when the corresponding config value is zero.
const (
	defaultTimeout     = 60 * time.Second
	defaultRetryCount  = 3
	defaultMaxTokens   = 2048
	defaultTemperature = 0.5
)

// backoffBase controls the base duration for exponential backoff between
// retry attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// Gateway routes completion calls to one of two interchangeable backends.
// Retries never cross a mode boundary: a call in multi-agent mode is only
// ever retried against the multi-agent backend, and vice versa.
type Gateway struct {
	multi   Backend
	direct  Backend
	timeout time.Duration
	retries int
}

// New builds a Gateway with HTTP backends for both modes from cfg.
func New(cfg types.GatewayConfig) *Gateway {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}

	mk := func(endpoint string) Backend {
		return &HTTPBackend{
			Endpoint:    endpoint,
			APIKey:      cfg.APIKey,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Client:      http.DefaultClient,
		}
	}

	return NewWithBackends(mk(cfg.MultiAgentEndpoint), mk(cfg.DirectEndpoint), cfg)
}

// NewWithBackends builds a Gateway over caller-supplied backends. Tests use
// this to substitute mocks for the HTTP clients.
func NewWithBackends(multi, direct Backend, cfg types.GatewayConfig) *Gateway {
	timeout := cfg.PerCallTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.RetryCount
	if retries <= 0 {
		retries = defaultRetryCount
	}
	return &Gateway{
		multi:   multi,
		direct:  direct,
		timeout: timeout,
		retries: retries,
	}
}

// PerCallTimeout returns the configured per-call timeout. The controller
// uses it to budget the remaining deadline before entering a stage.
func (g *Gateway) PerCallTimeout() time.Duration { return g.timeout }

// Invoke performs one completion call in the given mode, retrying failed
// calls with exponential backoff up to the configured retry count.
//
// In multi-agent mode an availability failure (connection error, per-call
// timeout exhaustion, or an explicit unavailable signal) is not retried:
// it is surfaced immediately as a BackendUnavailableError so the caller
// can demote the whole request to direct mode. All other failures, and
// every failure in direct mode, consume the retry budget and are then
// returned as plain errors.
func (g *Gateway) Invoke(ctx context.Context, role types.Role, prompt string, mode types.BackendMode) (string, error) {
	backend := g.direct
	if mode == types.ModeMultiAgent {
		backend = g.multi
	}
	if backend == nil {
		return "", fmt.Errorf("no backend configured for mode %q", mode)
	}

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := backend.Complete(callCtx, role, prompt)
		cancel()

		if err == nil {
			return text, nil
		}
		lastErr = err

		if mode == types.ModeMultiAgent && availabilityFailure(err) {
			return "", &BackendUnavailableError{Mode: mode, Role: role, Err: err}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("%s backend failed after %d retries: %w", mode, g.retries, lastErr)
}
