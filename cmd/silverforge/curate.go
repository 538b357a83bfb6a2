// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/curate"
)

var curateCmd = &cobra.Command{
	Use:   "curate [markdown files...]",
	Short: "Grade converted Markdown on structural, semantic, and text axes",
	Long: `Curate evaluates converted Markdown documents for use as training data.
The structural check inspects heading progression, table consistency, and
equation delimiters; the semantic check asks a Solar judgment model to
grade completeness, accuracy, and formatting; the text check looks at
character statistics, optionally against a reference text.

Without an API key the semantic check degrades to a zero score and the
degradation is recorded in the report; the other checks still run.`,
	RunE: runCurate,
}

func init() {
	curateCmd.Flags().String("reference", "", "reference text file for character and word error rates")
	curateCmd.Flags().String("api-key", "", "Upstage API key (default: .secrets/upstage-api-key or UPSTAGE_API_KEY)")
	curateCmd.Flags().String("model", "", "judgment model (default solar-pro)")
	curateCmd.Flags().Int("max-chars", 0, "cap on the document prefix sent to the judge (default 3000)")
	curateCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 120s)")
	curateCmd.Flags().Bool("json", false, "output reports as JSON instead of YAML")

	rootCmd.AddCommand(curateCmd)
}

func runCurate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more Markdown files")
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = upstageKey(apiKey)
	model, _ := cmd.Flags().GetString("model")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var reference string
	if refPath, _ := cmd.Flags().GetString("reference"); refPath != "" {
		data, err := os.ReadFile(refPath)
		if err != nil {
			return err
		}
		reference = string(data)
	}

	curator := &curate.Curator{
		Judge: &curate.SolarJudge{
			APIKey: apiKey,
			Model:  model,
			Client: &http.Client{Timeout: timeout},
		},
		MaxChars: maxChars,
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		report := curator.Curate(context.Background(), string(data), reference)

		if len(args) > 1 {
			fmt.Printf("# %s\n", path)
		}
		var out []byte
		if jsonOutput {
			out, err = json.MarshalIndent(report, "", "  ")
		} else {
			out, err = yaml.Marshal(report)
		}
		if err != nil {
			return err
		}
		os.Stdout.Write(out)
		fmt.Println()
	}
	return nil
}
