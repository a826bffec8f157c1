// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role identifies which pipeline agent produced a piece of text.
type Role string

const (
	RoleResearcher Role = "researcher"
	RoleOutliner   Role = "outliner"
	RoleWriter     Role = "writer"
	RoleEditor     Role = "editor"
)

// BackendMode selects the generative-text invocation strategy for a request.
// A request starts in multi-agent mode and may be demoted to direct mode
// exactly once; the two are never mixed within one request.
type BackendMode string

const (
	// ModeMultiAgent delegates to the agent-orchestration service.
	ModeMultiAgent BackendMode = "multi_agent"

	// ModeDirect makes a single synchronous call per stage against the
	// plain completion endpoint.
	ModeDirect BackendMode = "direct"
)

// AgentArtifact is the output of one pipeline stage. It is created once by
// the stage that produced it and passed by reference to later stages,
// never mutated.
type AgentArtifact struct {
	// Role is the agent that produced the text.
	Role Role `json:"role" yaml:"role"`

	// Text is the stage output.
	Text string `json:"text" yaml:"text"`

	// WordCount is the whitespace-token count of Text, derived at creation.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Ordinal is the zero-based position of the stage in the pipeline.
	Ordinal int `json:"ordinal" yaml:"ordinal"`
}

// PipelineResult is the outcome of a successful run. Created once when the
// pipeline reaches its terminal Completed state; immutable.
type PipelineResult struct {
	// Text is the final assembled article.
	Text string `json:"text" yaml:"text"`

	// FallbackUsed reports whether the request was demoted from
	// multi-agent to direct mode.
	FallbackUsed bool `json:"fallback_used" yaml:"fallback_used"`

	// Backend is the mode every artifact in Text was produced under.
	Backend BackendMode `json:"backend" yaml:"backend"`

	// StorageKey is the object key the article was persisted under.
	StorageKey string `json:"storage_key" yaml:"storage_key"`

	// RequestID echoes the validated request's identifier.
	RequestID string `json:"request_id" yaml:"request_id"`

	// WordCount is the whitespace-token count of Text.
	WordCount int `json:"word_count" yaml:"word_count"`
}
