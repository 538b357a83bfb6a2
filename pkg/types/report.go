// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// HeadingCounts tallies headings by depth, H1 through H4.
type HeadingCounts struct {
	H1 int `json:"h1" yaml:"h1"`
	H2 int `json:"h2" yaml:"h2"`
	H3 int `json:"h3" yaml:"h3"`
	H4 int `json:"h4" yaml:"h4"`
}

// StructureReport holds the rule-based structural checks for a Markdown
// document: heading hierarchy, table shape, and display-equation pairing.
type StructureReport struct {
	HeadingCounts HeadingCounts `json:"heading_count" yaml:"heading_count"`

	// HeadingOrderValid is false when a heading depth jumps forward by
	// more than one level (e.g. H2 directly to H4).
	HeadingOrderValid bool `json:"heading_order_valid" yaml:"heading_order_valid"`

	// TableCount is the number of contiguous runs of table lines.
	TableCount int `json:"table_count" yaml:"table_count"`

	// TableValid is false when table lines disagree on pipe count,
	// separator rows excepted.
	TableValid bool `json:"table_valid" yaml:"table_valid"`

	// EquationCount is the number of complete $$...$$ pairs.
	EquationCount int `json:"equation_count" yaml:"equation_count"`

	// EquationValid is false when the total $$ delimiter count is odd.
	EquationValid bool `json:"equation_valid" yaml:"equation_valid"`

	Issues []string `json:"issues" yaml:"issues"`

	// Pass is the AND of the three validity flags.
	Pass bool `json:"pass" yaml:"pass"`
}

// SemanticReport is the judgment returned by the language-model collaborator.
// The sub-scores are nominally 1-10 and the overall score 0-100, but the
// source is untrusted: a failed call or unparseable response yields a
// zero-scored report with an explanatory issue.
type SemanticReport struct {
	StructureScore    int      `json:"structure_score" yaml:"structure_score"`
	CompletenessScore int      `json:"completeness_score" yaml:"completeness_score"`
	CoherenceScore    int      `json:"coherence_score" yaml:"coherence_score"`
	OverallScore      int      `json:"overall_score" yaml:"overall_score"`
	Issues            []string `json:"issues" yaml:"issues"`
	Recommendation    string   `json:"recommendation" yaml:"recommendation"`

	// Pass is true when a valid response scored 70 or higher.
	Pass bool `json:"pass" yaml:"pass"`
}

// TextQualityReport holds lexical metrics for a document, optionally
// compared against a reference text.
type TextQualityReport struct {
	CharCount int `json:"char_count" yaml:"char_count"`
	WordCount int `json:"word_count" yaml:"word_count"`

	// CER and WER are character and word error rates versus the reference.
	// Nil when no reference was supplied.
	CER *float64 `json:"cer,omitempty" yaml:"cer,omitempty"`
	WER *float64 `json:"wer,omitempty" yaml:"wer,omitempty"`

	// Pass is CER < 0.15 when a reference was supplied, true otherwise.
	Pass bool `json:"pass" yaml:"pass"`
}

// CurationReport aggregates the three evaluator reports into one verdict.
// It is created fresh per curation call and never mutated afterward.
type CurationReport struct {
	// Pass is the AND of the three sub-report passes.
	Pass bool `json:"pass" yaml:"pass"`

	TextQuality      TextQualityReport `json:"text_quality" yaml:"text_quality"`
	StructureQuality StructureReport   `json:"structure_quality" yaml:"structure_quality"`
	SemanticQuality  SemanticReport    `json:"semantic_quality" yaml:"semantic_quality"`

	// OverallScore is the semantic score plus a 10-point bonus per passing
	// structural and text check, clamped to 100.
	OverallScore int `json:"overall_score" yaml:"overall_score"`

	Recommendation string `json:"recommendation" yaml:"recommendation"`
}
