// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages into an explicit state machine:
//
//	Validating → Orchestrating(multi_agent) → Assembling → Storing → Completed
//
// with a single permitted demotion Orchestrating(multi_agent) →
// Orchestrating(direct) and Failed reachable from every state. The
// controller owns the fallback decision; stages below it never switch
// backend modes themselves.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/content-engine/internal/assemble"
	"github.com/pdiddy/content-engine/internal/gateway"
	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/internal/orchestrate"
	"github.com/pdiddy/content-engine/internal/storage"
	"github.com/pdiddy/content-engine/internal/validate"
	"github.com/pdiddy/content-engine/pkg/types"
)

// State identifies a pipeline controller state.
type State string

const (
	StateValidating          State = "validating"
	StateOrchestratingMulti  State = "orchestrating(multi_agent)"
	StateOrchestratingDirect State = "orchestrating(direct)"
	StateAssembling          State = "assembling"
	StateStoring             State = "storing"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
)

// ErrorKind is the terminal error classification surfaced to callers.
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindAgent              ErrorKind = "AgentError"
	KindBackendUnavailable ErrorKind = "BackendUnavailable"
	KindStorage            ErrorKind = "StorageError"
	KindPipeline           ErrorKind = "PipelineFailure"
)

// Failure is the terminal error of a failed run. It carries whatever
// partial artifacts exist for diagnostics, and the assembled content when
// generation succeeded but persistence did not.
type Failure struct {
	// State is the state the failure occurred in.
	State State

	// Kind classifies the failure.
	Kind ErrorKind

	// Message is a human-readable description, never a raw backend trace.
	Message string

	// Artifacts holds the stage outputs completed before the failure.
	Artifacts []types.AgentArtifact

	// Content holds the assembled document when it exists (storage
	// failures happen after generation succeeded).
	Content string

	// Err is the underlying cause.
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("pipeline failed in %s: %s: %s", f.State, f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Controller coordinates one request through the pipeline. All fields are
// read-only configuration; a single Controller serves concurrent requests
// because each Run keeps its state on the stack.
type Controller struct {
	// Gateway performs all model calls.
	Gateway orchestrate.Invoker

	// Storage persists the final document.
	Storage *storage.Writer

	// Ledger, when non-nil, records completed runs. Ledger failures are
	// reported as warnings, never as pipeline failures.
	Ledger *history.Store

	// Tolerance is the assembly word-count tolerance fraction.
	Tolerance float64

	// StageBudget is the minimum remaining deadline required to enter a
	// stage; with less than this left the run fails fast instead of
	// starting work it cannot finish.
	StageBudget time.Duration

	// Progress receives human-readable progress lines. May be nil.
	Progress io.Writer

	// OnTransition, when non-nil, observes every state transition.
	OnTransition func(from, to State)
}

// Run executes the pipeline for one raw request and returns the result of
// a completed run. On failure the returned error is always a *Failure.
func (c *Controller) Run(ctx context.Context, raw types.RawRequest) (*types.PipelineResult, error) {
	w := c.Progress
	if w == nil {
		w = io.Discard
	}

	state := StateValidating

	req, err := validate.Validate(raw)
	if err != nil {
		return nil, c.fail(&state, &Failure{
			State: state, Kind: KindValidation, Message: err.Error(), Err: err,
		})
	}
	fmt.Fprintf(w, "validated request %s (%q, %d words)\n", req.RequestID, req.Topic, req.TargetWordCount)

	mode := types.ModeMultiAgent
	fallbackUsed := false

	if f := c.advance(ctx, &state, StateOrchestratingMulti, nil, ""); f != nil {
		return nil, f
	}
	artifacts, err := orchestrate.Run(ctx, c.Gateway, req, mode, w)
	if err != nil && eligibleForFallback(err) {
		// The one permitted mode switch. Artifacts from the failed mode
		// are discarded so the final document is never authored by two
		// reasoning strategies.
		fallbackUsed = true
		mode = types.ModeDirect
		fmt.Fprintf(w, "multi_agent backend failed (%v); rerunning all stages in direct mode\n", err)

		if f := c.advance(ctx, &state, StateOrchestratingDirect, nil, ""); f != nil {
			return nil, f
		}
		artifacts, err = orchestrate.Run(ctx, c.Gateway, req, mode, w)
	}
	if err != nil {
		return nil, c.fail(&state, &Failure{
			State:     state,
			Kind:      orchestrationKind(err, fallbackUsed),
			Message:   err.Error(),
			Artifacts: artifacts,
			Err:       err,
		})
	}

	if f := c.advance(ctx, &state, StateAssembling, artifacts, ""); f != nil {
		return nil, f
	}
	content, err := assemble.Assemble(ctx, c.Gateway, req, artifacts, mode, c.Tolerance)
	if err != nil {
		return nil, c.fail(&state, &Failure{
			State: state, Kind: KindPipeline, Message: err.Error(),
			Artifacts: artifacts, Err: err,
		})
	}
	fmt.Fprintf(w, "assembled %d words\n", types.CountWords(content))

	if f := c.advance(ctx, &state, StateStoring, artifacts, content); f != nil {
		return nil, f
	}
	key, err := c.Storage.Persist(ctx, content, req)
	if err != nil {
		return nil, c.fail(&state, &Failure{
			State: state, Kind: KindStorage, Message: err.Error(),
			Artifacts: artifacts, Content: content, Err: err,
		})
	}

	result := &types.PipelineResult{
		Text:         content,
		FallbackUsed: fallbackUsed,
		Backend:      mode,
		StorageKey:   key,
		RequestID:    req.RequestID,
		WordCount:    types.CountWords(content),
	}

	if c.Ledger != nil {
		if err := c.Ledger.Record(ctx, req, result); err != nil {
			fmt.Fprintf(w, "warning: ledger record failed: %v\n", err)
		}
	}

	c.move(&state, StateCompleted)
	fmt.Fprintf(w, "completed %s → %s\n", req.RequestID, key)
	return result, nil
}

// advance moves to the next state after the cooperative cancellation check
// and the remaining-deadline budget check. Cancellation is checked at
// transitions only, never mid-call.
func (c *Controller) advance(ctx context.Context, state *State, next State, artifacts []types.AgentArtifact, content string) *Failure {
	if err := ctx.Err(); err != nil {
		return c.fail(state, &Failure{
			State: *state, Kind: KindPipeline, Message: "cancelled: " + err.Error(),
			Artifacts: artifacts, Content: content, Err: err,
		})
	}
	if c.StageBudget > 0 {
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < c.StageBudget {
			return c.fail(state, &Failure{
				State: *state, Kind: KindPipeline,
				Message:   fmt.Sprintf("remaining deadline cannot accommodate %s", next),
				Artifacts: artifacts, Content: content, Err: context.DeadlineExceeded,
			})
		}
	}
	c.move(state, next)
	return nil
}

// move records a state transition.
func (c *Controller) move(state *State, next State) {
	if c.OnTransition != nil {
		c.OnTransition(*state, next)
	}
	*state = next
}

// fail records the transition into Failed and returns f.
func (c *Controller) fail(state *State, f *Failure) *Failure {
	c.move(state, StateFailed)
	return f
}

// eligibleForFallback reports whether a first-pass orchestration error
// permits the one-time demotion to direct mode: an unavailability signal
// from the multi-agent backend, or a multi-agent stage that exhausted its
// retry budget.
func eligibleForFallback(err error) bool {
	if gateway.IsBackendUnavailable(err) {
		return true
	}
	var agentErr *orchestrate.AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Mode == types.ModeMultiAgent
	}
	return false
}

// orchestrationKind classifies a terminal orchestration error. Before the
// fallback has been used the error keeps its own identity; once the
// fallback is exhausted there is nowhere left to go and the failure is the
// terminal aggregate.
func orchestrationKind(err error, fallbackUsed bool) ErrorKind {
	if fallbackUsed {
		return KindPipeline
	}
	if gateway.IsBackendUnavailable(err) {
		return KindBackendUnavailable
	}
	var agentErr *orchestrate.AgentError
	if errors.As(err, &agentErr) {
		return KindAgent
	}
	return KindPipeline
}
