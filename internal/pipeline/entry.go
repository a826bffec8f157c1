// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/content-engine/pkg/types"
)

// excerptRunes bounds the content excerpt returned by the entry operation.
const excerptRunes = 280

// Outcome is the entry operation's response shape.
type Outcome struct {
	// Status is "completed" or "error".
	Status string `json:"status" yaml:"status"`

	// StorageKey is set on completed runs.
	StorageKey string `json:"storage_key,omitempty" yaml:"storage_key,omitempty"`

	// ContentExcerpt is the opening of the generated article, set on
	// completed runs.
	ContentExcerpt string `json:"content_excerpt,omitempty" yaml:"content_excerpt,omitempty"`

	// FallbackUsed reports whether the run was demoted to direct mode.
	FallbackUsed bool `json:"fallback_used,omitempty" yaml:"fallback_used,omitempty"`

	// ErrorKind classifies the failure, set on error.
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Message describes the failure, set on error.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// GenerateContent is the entry operation: it runs the pipeline for raw and
// folds the result or failure into the caller-facing outcome. Failures
// surface an error kind and message, never a raw backend error chain.
func (c *Controller) GenerateContent(ctx context.Context, raw types.RawRequest) Outcome {
	result, err := c.Run(ctx, raw)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return Outcome{Status: "error", ErrorKind: f.Kind, Message: f.Message}
		}
		return Outcome{Status: "error", ErrorKind: KindPipeline, Message: err.Error()}
	}

	return Outcome{
		Status:         "completed",
		StorageKey:     result.StorageKey,
		ContentExcerpt: excerpt(result.Text),
		FallbackUsed:   result.FallbackUsed,
	}
}

// excerpt returns the first excerptRunes runes of text, cut back to the
// last word boundary.
func excerpt(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= excerptRunes {
		return string(runes)
	}
	cut := string(runes[:excerptRunes])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
