// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/fetch"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

const defaultDownloadDelay = 1 * time.Second

var fetchCmd = &cobra.Command{
	Use:   "fetch [arxiv-ids...]",
	Short: "Download arXiv PDFs into the papers directory",
	Long: `Fetch downloads arXiv PDFs into <papers-dir>/raw/. Identifiers may be
plain arXiv IDs (2306.01116) or id:slug pairs (1706.03762:attention) to
control the output filename. Existing files are skipped.

With no identifiers and --defaults, a starter set of well-known papers is
downloaded instead.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("papers-dir", "papers", "base directory for papers")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 120s)")
	fetchCmd.Flags().Bool("defaults", false, "fetch the built-in starter set of papers")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	useDefaults, _ := cmd.Flags().GetBool("defaults")
	if len(args) == 0 && !useDefaults {
		return fmt.Errorf("provide arXiv IDs or use --defaults for the starter set")
	}

	papersDir, _ := cmd.Flags().GetString("papers-dir")
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDownloadDelay
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	papers := make([]fetch.Paper, 0, len(args))
	for _, arg := range args {
		id, slug, _ := strings.Cut(arg, ":")
		papers = append(papers, fetch.Paper{ArxivID: id, Slug: slug})
	}
	if useDefaults {
		papers = append(papers, fetch.DefaultPapers...)
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		DownloadDelay: delay,
		PapersDir:     papersDir,
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result := fetch.FetchBatch(context.Background(), client, papers, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed to download", result.Failed)
	}
	return nil
}
