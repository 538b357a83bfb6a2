// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/curate"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/parse"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/server"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/store"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

const defaultAddr = ":8420"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline as an HTTP job server",
	Long: `Serve exposes the pipeline over HTTP. Upload PDFs to /upload, start
them with POST /jobs/{id}/process (or /jobs/process-all), poll /jobs/{id}
for status, and download the refined Markdown from /jobs/{id}/download.

Completed documents are persisted to a SQLite store under --data-dir
unless --no-persist is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", defaultAddr, "listen address")
	serveCmd.Flags().String("data-dir", "data", "directory for the document store")
	serveCmd.Flags().String("owner", "", "owner recorded on persisted documents (default local)")
	serveCmd.Flags().Bool("no-persist", false, "keep completed jobs in memory only")
	serveCmd.Flags().Int64("max-upload", 0, "max upload size in bytes (default 50 MiB)")
	serveCmd.Flags().String("api-key", "", "Upstage API key (default: .secrets/upstage-api-key or UPSTAGE_API_KEY)")
	serveCmd.Flags().String("model", "", "judgment model (default solar-pro)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	owner, _ := cmd.Flags().GetString("owner")
	noPersist, _ := cmd.Flags().GetBool("no-persist")
	maxUpload, _ := cmd.Flags().GetInt64("max-upload")
	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = upstageKey(apiKey)
	model, _ := cmd.Flags().GetString("model")

	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no Upstage API key configured; jobs will fail at the parse step")
	}

	parser := &parse.Client{
		APIKey:        apiKey,
		ExtractImages: true,
		HTTP:          &http.Client{Timeout: defaultTimeout},
	}
	curator := &curate.Curator{
		Judge: &curate.SolarJudge{
			APIKey: apiKey,
			Model:  model,
			Client: &http.Client{Timeout: defaultTimeout},
		},
	}

	var docs *store.Store
	if !noPersist {
		var err error
		docs, err = store.New(types.StoreConfig{DataDir: dataDir})
		if err != nil {
			return err
		}
		defer docs.Close()
	}

	s := server.New(parser, curator, docs, types.ServerConfig{
		Addr:           addr,
		Owner:          owner,
		MaxUploadBytes: maxUpload,
	})
	return s.ListenAndServe(addr)
}
