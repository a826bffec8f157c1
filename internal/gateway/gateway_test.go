// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// scriptedBackend returns the queued errors in order, then succeeds.
type scriptedBackend struct {
	errs  []error
	text  string
	calls int
}

func (s *scriptedBackend) Complete(_ context.Context, _ types.Role, _ string) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return "", err
	}
	return s.text, nil
}

func testCfg() types.GatewayConfig {
	return types.GatewayConfig{
		PerCallTimeout: time.Second,
		RetryCount:     3,
	}
}

func TestInvoke_DirectRetriesThenSucceeds(t *testing.T) {
	direct := &scriptedBackend{
		errs: []error{
			fmt.Errorf("transient"),
			fmt.Errorf("transient"),
		},
		text: "a draft",
	}
	g := NewWithBackends(nil, direct, testCfg())

	text, err := g.Invoke(context.Background(), types.RoleWriter, "prompt", types.ModeDirect)
	require.NoError(t, err)
	assert.Equal(t, "a draft", text)
	assert.Equal(t, 3, direct.calls)
}

func TestInvoke_DirectExhaustsRetries(t *testing.T) {
	direct := &scriptedBackend{
		errs: []error{
			fmt.Errorf("boom"), fmt.Errorf("boom"),
			fmt.Errorf("boom"), fmt.Errorf("boom"),
		},
	}
	g := NewWithBackends(nil, direct, testCfg())

	_, err := g.Invoke(context.Background(), types.RoleWriter, "prompt", types.ModeDirect)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	assert.Equal(t, 4, direct.calls)
	assert.False(t, IsBackendUnavailable(err))
}

func TestInvoke_MultiAgentUnavailableIsNotRetried(t *testing.T) {
	multi := &scriptedBackend{
		errs: []error{&CallError{Kind: KindUnavailable, Message: "service down"}},
	}
	g := NewWithBackends(multi, nil, testCfg())

	_, err := g.Invoke(context.Background(), types.RoleResearcher, "prompt", types.ModeMultiAgent)
	require.Error(t, err)
	assert.True(t, IsBackendUnavailable(err))
	assert.Equal(t, 1, multi.calls)

	var unavail *BackendUnavailableError
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, types.ModeMultiAgent, unavail.Mode)
	assert.Equal(t, types.RoleResearcher, unavail.Role)
}

func TestInvoke_MultiAgentTimeoutRaisesUnavailable(t *testing.T) {
	multi := &scriptedBackend{
		errs: []error{&CallError{Kind: KindTimeout, Message: "deadline exceeded"}},
	}
	g := NewWithBackends(multi, nil, testCfg())

	_, err := g.Invoke(context.Background(), types.RoleResearcher, "prompt", types.ModeMultiAgent)
	assert.True(t, IsBackendUnavailable(err))
	assert.Equal(t, 1, multi.calls)
}

func TestInvoke_MultiAgentInvalidRequestRetries(t *testing.T) {
	// invalid_request is the request's fault, not an availability failure:
	// it burns the retry budget and surfaces as a plain error.
	multi := &scriptedBackend{
		errs: []error{
			&CallError{Kind: KindInvalidRequest, Message: "bad prompt"},
			&CallError{Kind: KindInvalidRequest, Message: "bad prompt"},
			&CallError{Kind: KindInvalidRequest, Message: "bad prompt"},
			&CallError{Kind: KindInvalidRequest, Message: "bad prompt"},
		},
	}
	g := NewWithBackends(multi, nil, testCfg())

	_, err := g.Invoke(context.Background(), types.RoleResearcher, "prompt", types.ModeMultiAgent)
	require.Error(t, err)
	assert.False(t, IsBackendUnavailable(err))
	assert.Equal(t, 4, multi.calls)
}

func TestInvoke_ModeSelectsBackend(t *testing.T) {
	multi := &scriptedBackend{text: "from multi"}
	direct := &scriptedBackend{text: "from direct"}
	g := NewWithBackends(multi, direct, testCfg())

	text, err := g.Invoke(context.Background(), types.RoleWriter, "p", types.ModeMultiAgent)
	require.NoError(t, err)
	assert.Equal(t, "from multi", text)

	text, err = g.Invoke(context.Background(), types.RoleWriter, "p", types.ModeDirect)
	require.NoError(t, err)
	assert.Equal(t, "from direct", text)
}

func TestInvoke_CancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	direct := &scriptedBackend{
		errs: []error{fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom")},
	}
	g := NewWithBackends(nil, direct, testCfg())

	cancel()
	_, err := g.Invoke(ctx, types.RoleWriter, "prompt", types.ModeDirect)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, direct.calls, 1)
}
