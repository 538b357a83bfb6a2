// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// DefaultMaxChars caps the document prefix sent to the judgment model.
const DefaultMaxChars = 3000

// passThreshold is the minimum overall score for a semantic pass.
const passThreshold = 70

// truncationNotice is appended when the document exceeds the character budget.
const truncationNotice = "\n\n... (remainder of document omitted)"

// Judge abstracts the language-model collaborator so tests can supply a mock.
// Configured reports whether a credential is available; when it returns
// false no judgment call is attempted.
type Judge interface {
	Configured() bool
	Judge(ctx context.Context, prompt string) (string, error)
}

// judgmentPromptTmpl instructs the model to grade the document on three
// axes and answer with a single JSON object.
var judgmentPromptTmpl = template.Must(template.New("judgment").Parse(`You are an academic document quality inspector. Evaluate the quality of the following Markdown document.

[Document]
{{.Document}}

[Criteria]
1. structure_score (1-10): is the section ordering logical?
2. completeness_score (1-10): are the essential parts of an academic paper present (Abstract, Introduction, Method, Results, Conclusion)?
3. coherence_score (1-10): is the content consistent and readable?

[Response format]
Respond with a single JSON object and nothing else:
{
    "structure_score": 8,
    "completeness_score": 9,
    "coherence_score": 7,
    "overall_score": 80,
    "issues": ["problem found 1", "problem found 2"],
    "recommendation": "chunkable - minor issues only"
}`))

// judgment is the expected shape of the model's JSON answer.
type judgment struct {
	StructureScore    int      `json:"structure_score"`
	CompletenessScore int      `json:"completeness_score"`
	CoherenceScore    int      `json:"coherence_score"`
	OverallScore      int      `json:"overall_score"`
	Issues            []string `json:"issues"`
	Recommendation    string   `json:"recommendation"`
}

// EvaluateSemantic asks the judgment collaborator to grade a document.
// The document is truncated to maxChars (DefaultMaxChars when <= 0) with a
// notice appended. Every failure mode degrades into a zero-scored report
// with an explanatory issue: a missing credential short-circuits before any
// call, a transport error carries its message, and an unparseable answer is
// reported as such. A valid answer passes at an overall score of 70 or more.
func EvaluateSemantic(ctx context.Context, judge Judge, markdown string, maxChars int) types.SemanticReport {
	if judge == nil || !judge.Configured() {
		return failedReport("judgment API key not configured", "configure an API key to enable semantic checks")
	}

	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	doc := markdown
	if runes := []rune(doc); len(runes) > maxChars {
		doc = string(runes[:maxChars]) + truncationNotice
	}

	prompt, err := renderJudgmentPrompt(doc)
	if err != nil {
		return failedReport(fmt.Sprintf("rendering judgment prompt: %v", err), "manual review required")
	}

	raw, err := judge.Judge(ctx, prompt)
	if err != nil {
		return failedReport(fmt.Sprintf("judgment call failed: %v", err), "manual review required")
	}

	j, err := parseJudgment(raw)
	if err != nil {
		return failedReport("judgment response was not valid JSON", "manual review required")
	}

	return types.SemanticReport{
		StructureScore:    j.StructureScore,
		CompletenessScore: j.CompletenessScore,
		CoherenceScore:    j.CoherenceScore,
		OverallScore:      j.OverallScore,
		Issues:            j.Issues,
		Recommendation:    j.Recommendation,
		Pass:              j.OverallScore >= passThreshold,
	}
}

// parseJudgment decodes the model's answer, tolerating a surrounding
// Markdown code fence. The answer is untrusted input: malformed JSON is an
// expected case and is returned as an error, not a panic.
func parseJudgment(raw string) (judgment, error) {
	content := strings.TrimSpace(raw)
	content = stripCodeFence(content)

	var j judgment
	if err := json.Unmarshal([]byte(content), &j); err != nil {
		return judgment{}, fmt.Errorf("parsing judgment JSON: %w", err)
	}
	return j, nil
}

// stripCodeFence removes a surrounding ``` fence, with or without a
// language tag, leaving other content untouched.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func failedReport(issue, recommendation string) types.SemanticReport {
	return types.SemanticReport{
		Issues:         []string{issue},
		Recommendation: recommendation,
		Pass:           false,
	}
}

func renderJudgmentPrompt(doc string) (string, error) {
	var buf bytes.Buffer
	if err := judgmentPromptTmpl.Execute(&buf, struct{ Document string }{Document: doc}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
