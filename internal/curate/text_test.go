// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"math"
	"testing"
)

func TestEvaluateTextQuality_NoReference(t *testing.T) {
	report := EvaluateTextQuality("# Title\n\nfour words right here", "")

	if !report.Pass {
		t.Error("no reference means nothing to compare: must pass")
	}
	if report.CER != nil || report.WER != nil {
		t.Error("error rates must be absent without a reference")
	}
	if report.WordCount != 6 {
		t.Errorf("WordCount = %d, want 6", report.WordCount)
	}
}

func TestEvaluateTextQuality_CharCountIsRunes(t *testing.T) {
	report := EvaluateTextQuality("héllo", "")
	if report.CharCount != 5 {
		t.Errorf("CharCount = %d, want 5", report.CharCount)
	}
}

func TestEvaluateTextQuality_WithReference(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		ref      string
		wantCER  float64
		wantPass bool
	}{
		{
			name:     "identical texts",
			markdown: "the quick brown fox",
			ref:      "the quick brown fox",
			wantCER:  0,
			wantPass: true,
		},
		{
			name:     "one character off in ten",
			markdown: "abcdefghiX",
			ref:      "abcdefghij",
			wantCER:  0.1,
			wantPass: true,
		},
		{
			name:     "heavily garbled",
			markdown: "zzzzzzzzzz",
			ref:      "abcdefghij",
			wantCER:  1.0,
			wantPass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := EvaluateTextQuality(tt.markdown, tt.ref)
			if report.CER == nil {
				t.Fatal("CER must be set with a reference")
			}
			if math.Abs(*report.CER-tt.wantCER) > 1e-9 {
				t.Errorf("CER = %v, want %v", *report.CER, tt.wantCER)
			}
			if report.Pass != tt.wantPass {
				t.Errorf("Pass = %v, want %v", report.Pass, tt.wantPass)
			}
		})
	}
}

func TestWordErrorRate(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		cand string
		want float64
	}{
		{name: "identical", ref: "a b c d", cand: "a b c d", want: 0},
		{name: "one substitution", ref: "a b c d", cand: "a b x d", want: 0.25},
		{name: "one deletion", ref: "a b c d", cand: "a b d", want: 0.25},
		{name: "one insertion", ref: "a b c", cand: "a b x c", want: 1.0 / 3.0},
		{name: "empty candidate", ref: "a b", cand: "", want: 1},
		{name: "both empty", ref: "", cand: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wordErrorRate(tt.ref, tt.cand)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("wordErrorRate(%q, %q) = %v, want %v", tt.ref, tt.cand, got, tt.want)
			}
		})
	}
}
