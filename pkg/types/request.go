// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures passed between pipeline
// stages: content requests, agent artifacts, pipeline results, and the
// configuration structs each stage consumes.
package types

// Tone classifies the writing style of a requested article.
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneConversational Tone = "conversational"
	ToneAuthoritative  Tone = "authoritative"
	ToneFriendly       Tone = "friendly"
	ToneTechnical      Tone = "technical"
	TonePlayful        Tone = "playful"
)

// Tones lists every accepted tone value.
var Tones = []Tone{
	ToneProfessional,
	ToneConversational,
	ToneAuthoritative,
	ToneFriendly,
	ToneTechnical,
	TonePlayful,
}

// ValidTone reports whether t is a member of the accepted tone set.
func ValidTone(t Tone) bool {
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}

// RawRequest is the unvalidated payload accepted by the entry operation.
// It carries exactly what the caller supplied; normalization and defaulting
// happen during validation.
type RawRequest struct {
	// Topic is the article subject. Required.
	Topic string `json:"topic" yaml:"topic"`

	// Brand is the publishing brand name. Optional; defaulted when empty.
	Brand string `json:"brand,omitempty" yaml:"brand,omitempty"`

	// Audience describes the target readership. Optional; defaulted when empty.
	Audience string `json:"audience,omitempty" yaml:"audience,omitempty"`

	// Tone selects the writing style. Optional; must be in the accepted
	// tone set when non-empty.
	Tone string `json:"tone,omitempty" yaml:"tone,omitempty"`

	// SEOKeywords lists keywords the final article must contain. Order is
	// irrelevant and the list may be empty.
	SEOKeywords []string `json:"seo_keywords,omitempty" yaml:"seo_keywords,omitempty"`

	// TargetWordCount is the desired article length. Zero means "use the
	// default"; negative values are rejected.
	TargetWordCount int `json:"target_word_count,omitempty" yaml:"target_word_count,omitempty"`
}

// ContentRequest is a validated, normalized request. It is immutable once
// created: stages receive it by pointer and never modify it.
type ContentRequest struct {
	// RequestID uniquely identifies this invocation. Assigned at
	// validation time.
	RequestID string `json:"request_id" yaml:"request_id"`

	// Topic is the article subject.
	Topic string `json:"topic" yaml:"topic"`

	// Brand is the publishing brand name.
	Brand string `json:"brand" yaml:"brand"`

	// Audience describes the target readership.
	Audience string `json:"audience" yaml:"audience"`

	// Tone is the writing style, one of the accepted tone set.
	Tone Tone `json:"tone" yaml:"tone"`

	// SEOKeywords lists keywords the final article must contain.
	SEOKeywords []string `json:"seo_keywords,omitempty" yaml:"seo_keywords,omitempty"`

	// TargetWordCount is the desired article length in words. Always positive.
	TargetWordCount int `json:"target_word_count" yaml:"target_word_count"`
}
