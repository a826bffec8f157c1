// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate sequences the role-based agent stages that turn a
// content request into a set of artifacts. The four roles run in a fixed
// order, each stage consuming every prior artifact.
package orchestrate

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/content-engine/internal/gateway"
	"github.com/pdiddy/content-engine/pkg/types"
)

// StageOrder is the fixed role sequence. Artifact ordinals follow this
// order.
var StageOrder = []types.Role{
	types.RoleResearcher,
	types.RoleOutliner,
	types.RoleWriter,
	types.RoleEditor,
}

// Invoker abstracts the model gateway so tests can supply mocks.
type Invoker interface {
	Invoke(ctx context.Context, role types.Role, prompt string, mode types.BackendMode) (string, error)
}

// AgentError reports that a single stage's invocation failed after the
// gateway's retry budget was exhausted within the current backend mode.
type AgentError struct {
	// Role is the stage that failed.
	Role types.Role

	// Mode is the backend mode the stage was running under.
	Mode types.BackendMode

	// Err is the gateway error.
	Err error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("%s stage failed in %s mode: %v", e.Role, e.Mode, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// Run executes the full role sequence under a single backend mode and
// returns the artifacts in stage order. On failure it returns the
// artifacts completed so far alongside the error.
//
// A BackendUnavailableError from the gateway passes through untouched: the
// orchestrator never retries the failed role itself. The caller decides on
// a mode demotion and re-runs the entire sequence; artifacts from the
// failed mode must be discarded, never merged with fallback output.
func Run(ctx context.Context, inv Invoker, req *types.ContentRequest, mode types.BackendMode, w io.Writer) ([]types.AgentArtifact, error) {
	if w == nil {
		w = io.Discard
	}

	var artifacts []types.AgentArtifact
	for i, role := range StageOrder {
		prompt, err := BuildPrompt(role, req, artifacts)
		if err != nil {
			return artifacts, &AgentError{Role: role, Mode: mode, Err: err}
		}

		text, err := inv.Invoke(ctx, role, prompt, mode)
		if err != nil {
			if gateway.IsBackendUnavailable(err) {
				return artifacts, err
			}
			return artifacts, &AgentError{Role: role, Mode: mode, Err: err}
		}

		artifact := types.AgentArtifact{
			Role:      role,
			Text:      text,
			WordCount: types.CountWords(text),
			Ordinal:   i,
		}
		artifacts = append(artifacts, artifact)
		fmt.Fprintf(w, "stage %d/%d %s: %d words\n", i+1, len(StageOrder), role, artifact.WordCount)
	}

	return artifacts, nil
}
