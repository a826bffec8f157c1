// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate normalizes and validates incoming content requests.
// Validation is the first pipeline stage and performs no network or
// storage side effects; a request that fails here never reaches the
// gateway or the store.
package validate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/content-engine/pkg/types"
)

// Defaults applied to optional fields, matching the service's historical
// request handling.
const (
	DefaultBrand     = "our brand"
	DefaultAudience  = "a general business audience"
	DefaultTone      = types.ToneProfessional
	DefaultWordCount = 700
)

// Error describes a rejected request field.
type Error struct {
	// Field is the offending request field.
	Field string

	// Reason explains why the field was rejected.
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Validate normalizes raw into an immutable ContentRequest and assigns a
// unique request identifier. It returns a *Error when a required field is
// missing, empty, or out of domain.
func Validate(raw types.RawRequest) (*types.ContentRequest, error) {
	topic := strings.TrimSpace(raw.Topic)
	if topic == "" {
		return nil, &Error{Field: "topic", Reason: "must not be empty"}
	}

	if raw.TargetWordCount < 0 {
		return nil, &Error{Field: "target_word_count", Reason: fmt.Sprintf("must be positive, got %d", raw.TargetWordCount)}
	}
	wordCount := raw.TargetWordCount
	if wordCount == 0 {
		wordCount = DefaultWordCount
	}

	tone := DefaultTone
	if t := strings.TrimSpace(raw.Tone); t != "" {
		tone = types.Tone(strings.ToLower(t))
		if !types.ValidTone(tone) {
			return nil, &Error{Field: "tone", Reason: fmt.Sprintf("%q is not a recognized tone", raw.Tone)}
		}
	}

	brand := strings.TrimSpace(raw.Brand)
	if brand == "" {
		brand = DefaultBrand
	}
	audience := strings.TrimSpace(raw.Audience)
	if audience == "" {
		audience = DefaultAudience
	}

	keywords, err := normalizeKeywords(raw.SEOKeywords)
	if err != nil {
		return nil, err
	}

	return &types.ContentRequest{
		RequestID:       uuid.NewString(),
		Topic:           topic,
		Brand:           brand,
		Audience:        audience,
		Tone:            tone,
		SEOKeywords:     keywords,
		TargetWordCount: wordCount,
	}, nil
}

// normalizeKeywords trims each keyword and drops duplicates, preserving
// first-seen order. Keywords that are empty after trimming are rejected
// rather than silently dropped.
func normalizeKeywords(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(raw))
	var keywords []string
	for i, kw := range raw {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			return nil, &Error{Field: "seo_keywords", Reason: fmt.Sprintf("keyword %d is empty", i)}
		}
		lower := strings.ToLower(trimmed)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		keywords = append(keywords, trimmed)
	}
	return keywords, nil
}
