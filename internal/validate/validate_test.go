// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-engine/pkg/types"
)

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		raw       types.RawRequest
		wantField string
	}{
		{
			name:      "missing topic",
			raw:       types.RawRequest{TargetWordCount: 500},
			wantField: "topic",
		},
		{
			name:      "whitespace topic",
			raw:       types.RawRequest{Topic: "   \t"},
			wantField: "topic",
		},
		{
			name:      "negative word count",
			raw:       types.RawRequest{Topic: "AI in healthcare", TargetWordCount: -100},
			wantField: "target_word_count",
		},
		{
			name:      "unknown tone",
			raw:       types.RawRequest{Topic: "AI in healthcare", Tone: "sarcastic"},
			wantField: "tone",
		},
		{
			name:      "empty keyword",
			raw:       types.RawRequest{Topic: "AI in healthcare", SEOKeywords: []string{"AI", "  "}},
			wantField: "seo_keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Validate(tt.raw)
			require.Error(t, err)
			assert.Nil(t, req)

			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	req, err := Validate(types.RawRequest{Topic: "AI in healthcare"})
	require.NoError(t, err)

	assert.Equal(t, DefaultBrand, req.Brand)
	assert.Equal(t, DefaultAudience, req.Audience)
	assert.Equal(t, DefaultTone, req.Tone)
	assert.Equal(t, DefaultWordCount, req.TargetWordCount)
	assert.Empty(t, req.SEOKeywords)
}

func TestValidate_PreservesFields(t *testing.T) {
	req, err := Validate(types.RawRequest{
		Topic:           "  AI in healthcare  ",
		Brand:           "Acme",
		Audience:        "CTOs",
		Tone:            "Professional",
		SEOKeywords:     []string{"AI", "healthcare"},
		TargetWordCount: 800,
	})
	require.NoError(t, err)

	assert.Equal(t, "AI in healthcare", req.Topic)
	assert.Equal(t, "Acme", req.Brand)
	assert.Equal(t, "CTOs", req.Audience)
	assert.Equal(t, types.ToneProfessional, req.Tone)
	assert.Equal(t, []string{"AI", "healthcare"}, req.SEOKeywords)
	assert.Equal(t, 800, req.TargetWordCount)
}

func TestValidate_DeduplicatesKeywords(t *testing.T) {
	req, err := Validate(types.RawRequest{
		Topic:       "AI in healthcare",
		SEOKeywords: []string{"AI", "ai", "healthcare", "AI"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AI", "healthcare"}, req.SEOKeywords)
}

func TestValidate_AssignsUniqueRequestIDs(t *testing.T) {
	a, err := Validate(types.RawRequest{Topic: "first"})
	require.NoError(t, err)
	b, err := Validate(types.RawRequest{Topic: "second"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.RequestID)
	assert.NotEmpty(t, b.RequestID)
	assert.NotEqual(t, a.RequestID, b.RequestID)
}
