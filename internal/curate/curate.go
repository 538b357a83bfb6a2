// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"context"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// Recommendation strings for the three curation outcomes.
const (
	RecommendChunkable      = "usable: all checks passed"
	RecommendSemanticReview = "usable: semantic review recommended"
	RecommendRevise         = "needs revision: structural or text issues found"
)

// Curator runs the three evaluators and blends their verdicts. The zero
// value is usable: a nil Judge degrades the semantic check into an
// unconfigured report rather than failing the call.
type Curator struct {
	// Judge is the language-model collaborator for the semantic check.
	Judge Judge

	// MaxChars caps the document prefix sent to the judge
	// (DefaultMaxChars when zero).
	MaxChars int
}

// Curate evaluates one document and returns a fresh aggregate report.
// Each call is a pure function of its inputs; the evaluators are
// independent of one another and share nothing between calls. The blended
// score is the semantic overall score plus a 10-point bonus for each of the
// structural and text checks that passed, clamped to 100.
func (c *Curator) Curate(ctx context.Context, markdown, reference string) types.CurationReport {
	text := EvaluateTextQuality(markdown, reference)
	structure := EvaluateStructure(markdown)
	semantic := EvaluateSemantic(ctx, c.Judge, markdown, c.MaxChars)

	score := semantic.OverallScore
	if structure.Pass {
		score += 10
	}
	if text.Pass {
		score += 10
	}
	// The judge's output is untrusted; clamp both ends.
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	var recommendation string
	switch {
	case text.Pass && structure.Pass && semantic.Pass:
		recommendation = RecommendChunkable
	case text.Pass && structure.Pass:
		recommendation = RecommendSemanticReview
	default:
		recommendation = RecommendRevise
	}

	return types.CurationReport{
		Pass:             text.Pass && structure.Pass && semantic.Pass,
		TextQuality:      text,
		StructureQuality: structure,
		SemanticQuality:  semantic,
		OverallScore:     score,
		Recommendation:   recommendation,
	}
}
