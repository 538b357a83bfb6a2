// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads arXiv PDFs into the papers directory so the
// pipeline has something to process.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/httputil"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// arxivPDFBase is the arXiv PDF endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf"

const rawDir = "raw"

// Paper pairs an arXiv identifier with a filesystem-friendly slug.
type Paper struct {
	ArxivID string
	Slug    string
}

// DefaultPapers is a starter set of well-known papers for seeding a corpus.
var DefaultPapers = []Paper{
	{"1706.03762", "attention_is_all_you_need"},
	{"1810.04805", "bert"},
	{"2005.14165", "gpt3"},
	{"1512.03385", "resnet"},
	{"2010.11929", "vit"},
	{"2103.00020", "clip"},
	{"2006.11239", "ddpm"},
	{"1707.06347", "ppo"},
	{"2201.11903", "chain_of_thought"},
	{"2210.03629", "react"},
}

// BatchResult holds the outcome of a batch download run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of papers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any downloads failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchPaper downloads one arXiv PDF into papersDir/raw/<slug>.pdf. If the
// file already exists the download is skipped.
func FetchPaper(ctx context.Context, client *http.Client, paper Paper, cfg types.FetchConfig, w io.Writer) (skipped bool, err error) {
	slug := paper.Slug
	if slug == "" {
		slug = strings.ReplaceAll(paper.ArxivID, "/", "_")
	}
	outPath := filepath.Join(cfg.PapersDir, rawDir, slug+".pdf")

	if _, err := os.Stat(outPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return false, fmt.Errorf("creating directory: %w", err)
	}

	url := fmt.Sprintf("%s/%s.pdf", arxivPDFBase, paper.ArxivID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return false, fmt.Errorf("downloading %s: %w", paper.ArxivID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("arXiv returned HTTP %d for %s", resp.StatusCode, paper.ArxivID)
	}

	// Write to a temp file and rename so a partial download never looks
	// like a finished PDF.
	tmp, err := os.CreateTemp(filepath.Dir(outPath), slug+".*.part")
	if err != nil {
		return false, fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		os.Remove(tmp.Name())
		return false, fmt.Errorf("renaming download: %w", err)
	}

	fmt.Fprintf(w, "downloaded: %s\n", slug)
	return false, nil
}

// FetchBatch downloads the papers in order, pausing cfg.DownloadDelay
// between network downloads, and returns a summary.
func FetchBatch(ctx context.Context, client *http.Client, papers []Paper, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, paper := range papers {
		skipped, err := FetchPaper(ctx, client, paper, cfg, w)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", paper.ArxivID, err)
			result.Failed++
		case skipped:
			result.Skipped++
		default:
			result.Downloaded++
		}

		if !skipped && i < len(papers)-1 && cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(cfg.DownloadDelay):
			}
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}
