// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages together: PDF bytes go through the
// document parser, image inlining, and heading refinement; optionally the
// curator scores the result and a report is written alongside the Markdown.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/curate"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/refine"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

const (
	// markdownDir is the subdirectory under the papers base for Markdown output.
	markdownDir = "markdown"
	// rawDir is the subdirectory under the papers base for raw PDFs.
	rawDir = "raw"
	// reportsDir is the subdirectory under the papers base for curation reports.
	reportsDir = "reports"
)

// Parser abstracts the document-parse collaborator so tests can supply a fake.
type Parser interface {
	ParseFile(ctx context.Context, path string) (*types.ParseResult, error)
}

// BatchResult holds the outcome of a batch processing run.
type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the total number of papers processed.
func (r BatchResult) Total() int {
	return r.Processed + r.Skipped + r.Failed
}

// HasFailures reports whether any papers failed processing.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Process converts one PDF into refined Markdown: parse, inline extracted
// images, then rebuild the heading hierarchy.
func Process(ctx context.Context, p Parser, pdfPath string) (string, error) {
	result, err := p.ParseFile(ctx, pdfPath)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", pdfPath, err)
	}
	return refine.Headings(result.InlineImages()), nil
}

// ProcessPaper converts a single PDF, writing the Markdown under
// papersDir/markdown/. When a curator is supplied the curation report is
// written as YAML under papersDir/reports/. If the Markdown output already
// exists the paper is skipped.
func ProcessPaper(ctx context.Context, p Parser, curator *curate.Curator, pdfPath, papersDir string, w io.Writer) (processed bool, err error) {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	mdPath := filepath.Join(papersDir, markdownDir, base+".md")

	if _, statErr := os.Stat(mdPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return false, nil
	}

	markdown, err := Process(ctx, p, pdfPath)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", mdPath, err)
	}

	if curator != nil {
		report := curator.Curate(ctx, markdown, "")
		if err := writeReport(papersDir, base, report); err != nil {
			return false, err
		}
		fmt.Fprintf(w, "processed: %s (score %d, %s)\n", base, report.OverallScore, report.Recommendation)
		return true, nil
	}

	fmt.Fprintf(w, "processed: %s\n", base)
	return true, nil
}

// ProcessBatch runs every PDF path through ProcessPaper, printing per-file
// status to w and returning a summary.
func ProcessBatch(ctx context.Context, p Parser, curator *curate.Curator, pdfPaths []string, papersDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, path := range pdfPaths {
		processed, err := ProcessPaper(ctx, p, curator, path, papersDir, w)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
			result.Failed++
		case processed:
			result.Processed++
		default:
			result.Skipped++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
		result.Processed, result.Skipped, result.Failed, result.Total())
	return result
}

// ListPDFs returns the PDF files under papersDir/raw/, sorted by name.
func ListPDFs(papersDir string) ([]string, error) {
	dir := filepath.Join(papersDir, rawDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// writeReport marshals the curation report to papersDir/reports/<base>.yaml.
func writeReport(papersDir, base string, report types.CurationReport) error {
	dir := filepath.Join(papersDir, reportsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, base+".yaml"), data, 0o644)
}
