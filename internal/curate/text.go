// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// cerThreshold is the maximum character error rate for a text-quality pass.
const cerThreshold = 0.15

// EvaluateTextQuality reports lexical metrics for a document. Character and
// word counts are always present. When a reference text is supplied the
// character and word error rates are computed against it and the check
// passes only when CER stays under 0.15; without a reference there is
// nothing to compare, so the check passes by default.
func EvaluateTextQuality(markdown, reference string) types.TextQualityReport {
	report := types.TextQualityReport{
		CharCount: utf8.RuneCountInString(markdown),
		WordCount: len(strings.Fields(markdown)),
		Pass:      true,
	}

	if reference == "" {
		return report
	}

	cer := errorRate(levenshtein.ComputeDistance(reference, markdown), utf8.RuneCountInString(reference))
	wer := wordErrorRate(reference, markdown)
	report.CER = &cer
	report.WER = &wer
	report.Pass = cer < cerThreshold

	return report
}

// wordErrorRate computes the word-level edit distance between reference and
// candidate, normalized by the reference word count. The rune-level library
// does not operate on token sequences, so the word variant carries its own
// Wagner-Fischer pass.
func wordErrorRate(reference, candidate string) float64 {
	ref := strings.Fields(reference)
	cand := strings.Fields(candidate)

	prev := make([]int, len(cand)+1)
	curr := make([]int, len(cand)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(cand); j++ {
			cost := 1
			if ref[i-1] == cand[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return errorRate(prev[len(cand)], len(ref))
}

func errorRate(distance, refLen int) float64 {
	if refLen == 0 {
		if distance == 0 {
			return 0
		}
		return 1
	}
	return float64(distance) / float64(refLen)
}
