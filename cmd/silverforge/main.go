// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the silverforge CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// upstageKey resolves the Upstage API key: explicit flag value first, then
// the .secrets/ directory, then the environment.
func upstageKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return secrets.Resolve(loadedSecrets, "upstage-api-key", "UPSTAGE_API_KEY")
}

// rootCmd is the base command for the silverforge CLI.
var rootCmd = &cobra.Command{
	Use:   "silverforge",
	Short: "PDF to silver-data Markdown pipeline",
	Long: `silverforge converts academic PDFs into curated Markdown for LLM
training corpora. PDFs are parsed through the Upstage document-parse API,
their heading hierarchy is rebuilt from the flattened output, and each
document is graded on structural, semantic, and text-quality axes.

Each pipeline stage is a subcommand: fetch, process, refine, curate, store,
and serve. Compose them into a corpus-building workflow, or run serve to
expose the whole pipeline over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./silverforge.yaml or ~/.config/silverforge/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("silverforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "silverforge"))
		}
	}

	viper.SetEnvPrefix("SILVERFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
