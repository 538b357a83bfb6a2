// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine reconstructs heading hierarchy in converted Markdown.
//
// Generic document-to-Markdown converters flatten every heading to a single
// level, discarding the visual hierarchy of the source document. Numeric
// section prefixes ("1", "3.1", "3.1.1") and canonical academic section
// names are strong signals of intended depth, so the hierarchy can be
// rebuilt deterministically without a model call.
package refine

import (
	"regexp"
	"strings"
)

// headingLine matches a Markdown heading marker followed by text content.
// Lines that carry a marker but no text (a bare "#") do not match and pass
// through unchanged.
var headingLine = regexp.MustCompile(`^(#+)\s*(.+)$`)

// levelRule pairs a content predicate with the depth it implies. Rules are
// evaluated in order; the first match wins.
type levelRule struct {
	match func(string) bool
	level int
}

var (
	subsubsection = regexp.MustCompile(`^\d+\.\d+\.\d+`)
	subsection    = regexp.MustCompile(`^\d+\.\d+`)
	section       = regexp.MustCompile(`^\d+\.?\s`)
)

// canonicalSections are section names that identify a top-level section of
// an academic document regardless of numbering.
var canonicalSections = map[string]bool{
	"abstract":         true,
	"introduction":     true,
	"conclusion":       true,
	"references":       true,
	"acknowledgments":  true,
	"acknowledgements": true,
	"appendix":         true,
	"related work":     true,
	"background":       true,
	"methodology":      true,
	"methods":          true,
	"results":          true,
	"discussion":       true,
	"experiments":      true,
	"evaluation":       true,
}

// levelRules is the depth classification order: deepest numeric prefix
// first, so "3.1.1" is not claimed by the "3.1" or "3" patterns. Numeric
// prefixes outrank the title rule: a numbered heading is never the title
// even when it appears before any depth-1 heading.
var levelRules = []levelRule{
	{func(s string) bool { return subsubsection.MatchString(s) }, 4},
	{func(s string) bool { return subsection.MatchString(s) }, 3},
	{func(s string) bool { return section.MatchString(s) }, 2},
	{func(s string) bool { return canonicalSections[strings.ToLower(strings.TrimSpace(s))] }, 2},
}

// Headings reassigns heading depth (1-4) across a flat Markdown document.
// Line order is preserved exactly; non-heading lines and malformed heading
// lines are untouched. At most one heading becomes depth 1: the first line
// not classified by a numeric or canonical rule is treated as the document
// title, and every later unclassified heading defaults to depth 2.
//
// Depth is always re-derived from content, never read from existing
// markers, so running Headings over an already-hierarchical document
// reclassifies it rather than leaving it alone.
func Headings(markdown string) string {
	lines := strings.Split(markdown, "\n")
	refined := make([]string, 0, len(lines))
	titleFound := false

	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			refined = append(refined, line)
			continue
		}

		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			refined = append(refined, line)
			continue
		}

		content := strings.TrimSpace(m[2])
		level := classify(content, titleFound)
		if level == 1 {
			titleFound = true
		}

		refined = append(refined, strings.Repeat("#", level)+" "+content)
	}

	return strings.Join(refined, "\n")
}

// classify determines the depth for a heading's text content.
func classify(content string, titleFound bool) int {
	trimmed := strings.TrimSpace(content)

	for _, rule := range levelRules {
		if rule.match(trimmed) {
			return rule.level
		}
	}

	if !titleFound {
		return 1
	}
	return 2
}
