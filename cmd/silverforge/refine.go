// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/refine"
)

var refineCmd = &cobra.Command{
	Use:   "refine [markdown files...]",
	Short: "Rebuild the heading hierarchy of converted Markdown",
	Long: `Refine reclassifies every heading in already-converted Markdown files.
Numbered sections map to their depth (1. to H2, 1.1 to H3, 1.1.1 to H4),
canonical section names like Abstract and References become H2, and the
first heading that matches neither becomes the H1 document title.

By default the refined Markdown is printed to stdout; --write rewrites
each file in place.`,
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().BoolP("write", "w", false, "rewrite files in place instead of printing to stdout")

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more Markdown files")
	}
	write, _ := cmd.Flags().GetBool("write")

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refined := refine.Headings(string(data))

		if !write {
			fmt.Print(refined)
			continue
		}
		if refined == string(data) {
			continue
		}
		if err := os.WriteFile(path, []byte(refined), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "refined %s\n", path)
	}
	return nil
}
