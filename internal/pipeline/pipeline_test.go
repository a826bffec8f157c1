// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/internal/gateway"
	"github.com/pdiddy/content-engine/internal/storage"
	"github.com/pdiddy/content-engine/pkg/types"
)

// prose builds text of exactly n words arranged in ten-word sentences.
func prose(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%10 == 0 {
				b.WriteString(". ")
			} else {
				b.WriteString(" ")
			}
		}
		fmt.Fprintf(&b, "word%d", i)
	}
	b.WriteString(".")
	return b.String()
}

// stubInvoker simulates the gateway: canned word counts per role, an
// optional unavailability failure on the first multi-agent call, and a
// record of every invocation.
type stubInvoker struct {
	bodyWords   int // words produced by writer and editor each
	failMulti   bool
	invocations []invocation
}

type invocation struct {
	role types.Role
	mode types.BackendMode
}

func (s *stubInvoker) Invoke(_ context.Context, role types.Role, _ string, mode types.BackendMode) (string, error) {
	s.invocations = append(s.invocations, invocation{role: role, mode: mode})
	if s.failMulti && mode == types.ModeMultiAgent {
		return "", &gateway.BackendUnavailableError{
			Mode: mode, Role: role,
			Err: &gateway.CallError{Kind: gateway.KindUnavailable, Message: "connection refused"},
		}
	}
	switch role {
	case types.RoleWriter, types.RoleEditor:
		return prose(s.bodyWords), nil
	default:
		return fmt.Sprintf("%s notes", role), nil
	}
}

// memStore records writes.
type memStore struct {
	writes map[string][]byte
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	if m.writes == nil {
		m.writes = map[string][]byte{}
	}
	m.writes[key] = data
	return nil
}

// failingStore rejects every write and counts attempts.
type failingStore struct {
	attempts int
}

func (f *failingStore) Put(context.Context, string, []byte) error {
	f.attempts++
	return fmt.Errorf("bucket unreachable")
}

func scenarioRequest() types.RawRequest {
	return types.RawRequest{
		Topic:           "AI in healthcare",
		Brand:           "Acme",
		Audience:        "CTOs",
		Tone:            "professional",
		SEOKeywords:     []string{"AI", "healthcare"},
		TargetWordCount: 800,
	}
}

func newController(inv *stubInvoker, store storage.ObjectStore) (*Controller, *[]State) {
	var visited []State
	c := &Controller{
		Gateway:   inv,
		Storage:   storage.NewWriter(store, "articles"),
		Tolerance: 0.10,
		OnTransition: func(_, to State) {
			visited = append(visited, to)
		},
	}
	return c, &visited
}

func TestRun_HappyPath(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	store := &memStore{}
	c, visited := newController(inv, store)

	result, err := c.Run(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.False(t, result.FallbackUsed)
	assert.Equal(t, types.ModeMultiAgent, result.Backend)
	assert.NotEmpty(t, result.RequestID)

	assert.GreaterOrEqual(t, result.WordCount, 720)
	assert.LessOrEqual(t, result.WordCount, 880)
	lower := strings.ToLower(result.Text)
	assert.Contains(t, lower, "ai")
	assert.Contains(t, lower, "healthcare")

	assert.Regexp(t, `^articles/\d{8}-\d{6}-[0-9a-f-]{36}\.md$`, result.StorageKey)
	assert.Contains(t, store.writes, result.StorageKey)

	// Every model call ran in multi-agent mode.
	require.Len(t, inv.invocations, 4)
	for _, call := range inv.invocations {
		assert.Equal(t, types.ModeMultiAgent, call.mode)
	}

	assert.Equal(t, []State{
		StateOrchestratingMulti, StateAssembling, StateStoring, StateCompleted,
	}, *visited)
}

func TestRun_FallbackPath(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400, failMulti: true}
	store := &memStore{}
	c, visited := newController(inv, store)

	result, err := c.Run(context.Background(), scenarioRequest())
	require.NoError(t, err)

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, types.ModeDirect, result.Backend)
	assert.GreaterOrEqual(t, result.WordCount, 720)
	assert.LessOrEqual(t, result.WordCount, 880)

	// First call failed in multi-agent mode; every call after the switch
	// used the direct backend, and the full sequence was re-run from the
	// first stage.
	require.Len(t, inv.invocations, 5)
	assert.Equal(t, types.ModeMultiAgent, inv.invocations[0].mode)
	for _, call := range inv.invocations[1:] {
		assert.Equal(t, types.ModeDirect, call.mode)
	}
	assert.Equal(t, types.RoleResearcher, inv.invocations[1].role)

	// Exactly one mode-switch transition.
	switches := 0
	for _, s := range *visited {
		if s == StateOrchestratingDirect {
			switches++
		}
	}
	assert.Equal(t, 1, switches)
}

func TestRun_StorageFailure(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	store := &failingStore{}
	c, visited := newController(inv, store)

	_, err := c.Run(context.Background(), scenarioRequest())
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindStorage, f.Kind)
	assert.Equal(t, StateStoring, f.State)

	// The generated content is still available for diagnostics.
	assert.NotEmpty(t, f.Content)
	assert.GreaterOrEqual(t, types.CountWords(f.Content), 720)
	assert.Len(t, f.Artifacts, 4)

	assert.Equal(t, 1, store.attempts, "storage writer must not retry")
	assert.Equal(t, StateFailed, (*visited)[len(*visited)-1])
}

func TestRun_ValidationFailsFast(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	store := &memStore{}
	c, _ := newController(inv, store)

	raw := scenarioRequest()
	raw.Topic = ""
	_, err := c.Run(context.Background(), raw)
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindValidation, f.Kind)
	assert.Equal(t, StateValidating, f.State)

	assert.Empty(t, inv.invocations, "no model calls after a validation failure")
	assert.Empty(t, store.writes, "no storage writes after a validation failure")
}

func TestRun_DeadlineBudgetFailsFast(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	c, _ := newController(inv, &memStore{})
	c.StageBudget = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Run(ctx, scenarioRequest())
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, KindPipeline, f.Kind)
	assert.Contains(t, f.Message, "cannot accommodate")
	assert.Empty(t, inv.invocations)
}

func TestRun_CancellationCheckedAtTransition(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	c, _ := newController(inv, &memStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, scenarioRequest())
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.ErrorIs(t, f.Err, context.Canceled)
	assert.Empty(t, inv.invocations)
}

func TestGenerateContent_Completed(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	c, _ := newController(inv, &memStore{})

	outcome := c.GenerateContent(context.Background(), scenarioRequest())
	assert.Equal(t, "completed", outcome.Status)
	assert.NotEmpty(t, outcome.StorageKey)
	assert.NotEmpty(t, outcome.ContentExcerpt)
	assert.LessOrEqual(t, len([]rune(outcome.ContentExcerpt)), excerptRunes+1)
	assert.Empty(t, outcome.ErrorKind)
}

func TestGenerateContent_Error(t *testing.T) {
	inv := &stubInvoker{bodyWords: 400}
	c, _ := newController(inv, &failingStore{})

	outcome := c.GenerateContent(context.Background(), scenarioRequest())
	assert.Equal(t, "error", outcome.Status)
	assert.Equal(t, KindStorage, outcome.ErrorKind)
	assert.NotEmpty(t, outcome.Message)
	assert.Empty(t, outcome.StorageKey)
}
