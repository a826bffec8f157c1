// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/content-engine/pkg/types"
)

// promptContext is the data every role template renders against. Prior
// artifact texts are empty strings until the producing stage has run.
type promptContext struct {
	Topic           string
	Brand           string
	Audience        string
	Tone            string
	Keywords        string
	TargetWordCount int
	Research        string
	Outline         string
	Draft           string
}

var researcherTmpl = template.Must(template.New("researcher").Parse(`You are a meticulous market research analyst.

Conduct research for an article about "{{.Topic}}".
Audience: {{.Audience}}. Brand: {{.Brand}}. Desired tone: {{.Tone}}.
{{if .Keywords}}Prioritize these SEO keywords: {{.Keywords}}.{{else}}No SEO keywords were provided.{{end}}

Deliver:
- 6-10 bullet points with key insights, statistics (with approximate figures), and pain points
- 8-12 SEO keyword ideas (short and long-tail)
- 3-5 proposed angles for the article

Respond with the bullet lists only, no preamble.`))

var outlinerTmpl = template.Must(template.New("outliner").Parse(`You are a content strategist who structures articles for clarity, search intent, and engagement.

Create a detailed outline for an article about "{{.Topic}}" aimed at {{.Audience}}, published by {{.Brand}}, in a {{.Tone}} tone.

Research findings:
{{.Research}}

Include: 1-2 title options, 5-8 H2 sections (with optional H3s), bullet notes per section, and an SEO snippet plan (title tag and meta description).`))

var writerTmpl = template.Must(template.New("writer").Parse(`You are a senior copywriter who writes persuasive, accurate, on-brand prose.

Write a {{.TargetWordCount}}-word article about "{{.Topic}}" following the outline below. Maintain a {{.Tone}} tone for {{.Audience}}. We are {{.Brand}}.
{{if .Keywords}}Incorporate these keywords naturally and avoid keyword stuffing: {{.Keywords}}.{{end}}

Research findings:
{{.Research}}

Outline:
{{.Outline}}

Return a cohesive article with an introduction, sections per the outline, and a conclusion. No outline or notes, only prose.`))

var editorTmpl = template.Must(template.New("editor").Parse(`You are a managing editor, uncompromising on quality and clarity.

Revise the drafted article below for clarity, correctness, brand voice, and SEO. Ensure factual consistency with the research. Target length: {{.TargetWordCount}} words.
{{if .Keywords}}Every one of these keywords must appear in the final text: {{.Keywords}}.{{end}}

Research findings:
{{.Research}}

Draft:
{{.Draft}}

Return only the final publication-ready article text, followed by a "Meta Description:" line (at most 160 characters) and a "CTA:" line.`))

var roleTemplates = map[types.Role]*template.Template{
	types.RoleResearcher: researcherTmpl,
	types.RoleOutliner:   outlinerTmpl,
	types.RoleWriter:     writerTmpl,
	types.RoleEditor:     editorTmpl,
}

// BuildPrompt renders the role-specific prompt from the request and all
// prior artifacts.
func BuildPrompt(role types.Role, req *types.ContentRequest, prior []types.AgentArtifact) (string, error) {
	tmpl, ok := roleTemplates[role]
	if !ok {
		return "", fmt.Errorf("no prompt template for role %q", role)
	}

	pc := promptContext{
		Topic:           req.Topic,
		Brand:           req.Brand,
		Audience:        req.Audience,
		Tone:            string(req.Tone),
		Keywords:        strings.Join(req.SEOKeywords, ", "),
		TargetWordCount: req.TargetWordCount,
	}
	for _, a := range prior {
		switch a.Role {
		case types.RoleResearcher:
			pc.Research = a.Text
		case types.RoleOutliner:
			pc.Outline = a.Text
		case types.RoleWriter:
			pc.Draft = a.Text
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pc); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", role, err)
	}
	return buf.String(), nil
}
