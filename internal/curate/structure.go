// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curate scores converted Markdown for downstream usability.
//
// Three independent evaluators feed one verdict: a lexical check (character
// and word counts, optional error rates against a reference), a rule-based
// structural check (heading order, table shape, equation pairing), and a
// semantic judgment delegated to a language-model collaborator. The
// evaluators share no state and never fail; degraded conditions surface as
// issue strings inside the reports.
package curate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// headingMarker captures the marker run at the start of a heading line.
var headingMarker = regexp.MustCompile(`^(#+)`)

// tableSeparator matches separator rows like |---|---| or |:---:|, which are
// exempt from the pipe-count consistency check.
var tableSeparator = regexp.MustCompile(`^\|[\s\-:|]+\|$`)

// EvaluateStructure runs the rule-based structural checks over a Markdown
// document. It always returns a complete report; structural problems are
// recorded as issues, never as errors.
func EvaluateStructure(markdown string) types.StructureReport {
	report := types.StructureReport{
		HeadingOrderValid: true,
		TableValid:        true,
		EquationValid:     true,
	}
	lines := strings.Split(markdown, "\n")

	var levels []int
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		m := headingMarker.FindString(line)
		level := len(m)
		if level > 4 {
			continue
		}
		switch level {
		case 1:
			report.HeadingCounts.H1++
		case 2:
			report.HeadingCounts.H2++
		case 3:
			report.HeadingCounts.H3++
		case 4:
			report.HeadingCounts.H4++
		}
		levels = append(levels, level)
	}

	// Only forward jumps are invalid: a section may close back to any
	// shallower depth, but may not skip levels going deeper.
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1]+1 {
			report.HeadingOrderValid = false
			report.Issues = append(report.Issues,
				fmt.Sprintf("heading level jump: H%d -> H%d", levels[i-1], levels[i]))
			break
		}
	}

	checkTables(lines, &report)

	delims := strings.Count(markdown, "$$")
	report.EquationCount = delims / 2
	report.EquationValid = delims%2 == 0
	if !report.EquationValid {
		report.Issues = append(report.Issues, "unmatched $$ equation delimiter")
	}

	report.Pass = report.HeadingOrderValid && report.TableValid && report.EquationValid
	return report
}

// checkTables counts contiguous runs of table lines and verifies that every
// table line carries the same number of pipes as the first one, separator
// rows excepted. The pipe check runs over all table lines in the document,
// not per run, so two legitimate tables with different column counts are
// flagged; the check stops at the first mismatch.
func checkTables(lines []string, report *types.StructureReport) {
	var tableLines []string
	inTable := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			tableLines = append(tableLines, line)
			if !inTable {
				report.TableCount++
				inTable = true
			}
		} else {
			inTable = false
		}
	}

	if len(tableLines) == 0 {
		return
	}

	pipes := strings.Count(tableLines[0], "|")
	for _, line := range tableLines[1:] {
		count := strings.Count(line, "|")
		if count == pipes {
			continue
		}
		if tableSeparator.MatchString(strings.TrimSpace(line)) {
			continue
		}
		report.TableValid = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("inconsistent table column count: %d vs %d pipes", pipes, count))
		break
	}
}
