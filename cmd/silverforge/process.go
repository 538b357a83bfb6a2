// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/curate"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/parse"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/pipeline"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "silverforge/0.1"
)

var processCmd = &cobra.Command{
	Use:   "process [pdfs...]",
	Short: "Convert PDFs to refined Markdown, optionally with curation",
	Long: `Process sends PDF files through the Upstage document-parse API, inlines
any extracted figure images, and rebuilds the heading hierarchy that the
parse flattens. Output lands in <papers-dir>/markdown/; papers whose
Markdown already exists are skipped.

With --curate each document is additionally graded on structural, semantic,
and text-quality axes, and the report is written to <papers-dir>/reports/.
Use --batch to process every PDF under <papers-dir>/raw/.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("papers-dir", "papers", "base directory for papers")
	processCmd.Flags().Bool("batch", false, "process all PDFs under <papers-dir>/raw/")
	processCmd.Flags().Bool("curate", false, "grade each document and write a curation report")
	processCmd.Flags().Bool("extract-images", true, "inline extracted figures as data URIs")
	processCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 120s)")
	processCmd.Flags().String("api-key", "", "Upstage API key (default: .secrets/upstage-api-key or UPSTAGE_API_KEY)")
	processCmd.Flags().String("model", "", "judgment model for --curate (default solar-pro)")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	papersDir, _ := cmd.Flags().GetString("papers-dir")
	batch, _ := cmd.Flags().GetBool("batch")
	withCuration, _ := cmd.Flags().GetBool("curate")
	extractImages, _ := cmd.Flags().GetBool("extract-images")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = upstageKey(apiKey)

	pdfs := args
	if batch {
		found, err := pipeline.ListPDFs(papersDir)
		if err != nil {
			return err
		}
		pdfs = append(pdfs, found...)
	}
	if len(pdfs) == 0 {
		return fmt.Errorf("provide PDF paths or use --batch with PDFs under %s/raw/", papersDir)
	}

	client := &parse.Client{
		APIKey:        apiKey,
		ExtractImages: extractImages,
		HTTP:          &http.Client{Timeout: timeout},
	}

	var curator *curate.Curator
	if withCuration {
		model, _ := cmd.Flags().GetString("model")
		curator = &curate.Curator{
			Judge: &curate.SolarJudge{
				APIKey: apiKey,
				Model:  model,
				Client: &http.Client{Timeout: timeout},
			},
		}
	}

	result := pipeline.ProcessBatch(context.Background(), client, curator, pdfs, papersDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed processing", result.Failed)
	}
	return nil
}
