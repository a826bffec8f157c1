// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble merges agent artifacts into the final document and
// enforces the request's quality constraints: keyword coverage and the
// target-length tolerance band.
package assemble

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/content-engine/pkg/types"
)

// DefaultTolerance is the accepted fractional deviation from the target
// word count when none is configured.
const DefaultTolerance = 0.10

// ModelInvoker is the single-call surface the assembler needs for the
// bounded expansion pass. The gateway satisfies it.
type ModelInvoker interface {
	Invoke(ctx context.Context, role types.Role, prompt string, mode types.BackendMode) (string, error)
}

// Assemble builds the final document from the stage artifacts. The Writer
// and Editor artifacts are concatenated into the base document, the length
// is pulled into the tolerance band around the request's target (sentence
// truncation when over, at most one Editor-role expansion call when under),
// and finally every missing keyword is appended so coverage is guaranteed
// in the output regardless of truncation.
func Assemble(ctx context.Context, inv ModelInvoker, req *types.ContentRequest, artifacts []types.AgentArtifact, mode types.BackendMode, tolerance float64) (string, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	base := baseDocument(artifacts)
	if strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("no writer or editor artifact to assemble")
	}

	doc, err := enforceLength(ctx, inv, req, base, mode, tolerance)
	if err != nil {
		return "", err
	}

	return ensureKeywords(doc, req.SEOKeywords), nil
}

// baseDocument concatenates the Writer and Editor artifact texts, in stage
// order, separated by a blank line.
func baseDocument(artifacts []types.AgentArtifact) string {
	var parts []string
	for _, a := range artifacts {
		if a.Role != types.RoleWriter && a.Role != types.RoleEditor {
			continue
		}
		if strings.TrimSpace(a.Text) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(a.Text))
	}
	return strings.Join(parts, "\n\n")
}

// enforceLength pulls doc into [target*(1-tol), target*(1+tol)] words.
// Over-target documents are truncated at the sentence boundary nearest the
// target. Under-target documents trigger one Editor-role expansion call;
// the expansion is never repeated, so a stubborn backend cannot cause
// unbounded growth.
func enforceLength(ctx context.Context, inv ModelInvoker, req *types.ContentRequest, doc string, mode types.BackendMode, tolerance float64) (string, error) {
	target := req.TargetWordCount
	lower := int(float64(target) * (1 - tolerance))
	upper := int(float64(target) * (1 + tolerance))

	count := types.CountWords(doc)
	switch {
	case count > upper:
		return truncateAtSentence(doc, target), nil
	case count < lower:
		if inv == nil {
			return doc, nil
		}
		expanded, err := inv.Invoke(ctx, types.RoleEditor, expansionPrompt(req, doc, count), mode)
		if err != nil {
			return "", fmt.Errorf("expansion call: %w", err)
		}
		if types.CountWords(expanded) > upper {
			return truncateAtSentence(expanded, target), nil
		}
		return expanded, nil
	default:
		return doc, nil
	}
}

// expansionPrompt asks the editor role to grow a short document to the
// target length without inventing facts.
func expansionPrompt(req *types.ContentRequest, doc string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a managing editor. The article below is %d words; expand it to approximately %d words.\n", count, req.TargetWordCount)
	fmt.Fprintf(&b, "Keep the %s tone for %s, add depth to existing sections rather than new claims, and return only the expanded article text.\n\n", req.Tone, req.Audience)
	b.WriteString(doc)
	return b.String()
}

// truncateAtSentence cuts doc at the sentence boundary whose cumulative
// word count is nearest the target. A document with no sentence boundary
// is returned unchanged.
func truncateAtSentence(doc string, target int) string {
	boundaries := sentenceBoundaries(doc)
	if len(boundaries) == 0 {
		return doc
	}

	best := -1
	bestDist := 0
	for _, end := range boundaries {
		count := types.CountWords(doc[:end])
		dist := count - target
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = end
			bestDist = dist
		}
	}
	return strings.TrimSpace(doc[:best])
}

// sentenceBoundaries returns the byte offsets just past each sentence
// terminator (., !, ?) that is followed by whitespace or end of text.
// Closing quotes and brackets after the terminator stay with the sentence.
func sentenceBoundaries(doc string) []int {
	var boundaries []int
	runes := []rune(doc)
	offset := 0
	for i, r := range runes {
		size := len(string(r))
		if r == '.' || r == '!' || r == '?' {
			end := offset + size
			j := i + 1
			for j < len(runes) && isClosing(runes[j]) {
				end += len(string(runes[j]))
				j++
			}
			if j >= len(runes) || unicode.IsSpace(runes[j]) {
				boundaries = append(boundaries, end)
			}
		}
		offset += size
	}
	return boundaries
}

// isClosing reports whether r is punctuation that may trail a sentence
// terminator.
func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

// ensureKeywords appends one sentence for each keyword not already present
// in doc (case-insensitive containment), guaranteeing every keyword appears
// at least once without disturbing existing sentences.
func ensureKeywords(doc string, keywords []string) string {
	if len(keywords) == 0 {
		return doc
	}

	lower := strings.ToLower(doc)
	var missing []string
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			missing = append(missing, kw)
		}
	}
	if len(missing) == 0 {
		return doc
	}

	var b strings.Builder
	b.WriteString(doc)
	for _, kw := range missing {
		fmt.Fprintf(&b, "\n\nThis piece also touches on %s.", kw)
	}
	return b.String()
}
