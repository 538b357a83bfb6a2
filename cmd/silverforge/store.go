// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/store"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the curated document store (list, show, search, delete)",
	Long: `Store manages the local SQLite document store that serve writes
completed documents into. Use subcommands to list documents, show one with
its Markdown, run a full-text search, or delete.`,
}

func init() {
	storeCmd.PersistentFlags().String("data-dir", "data", "directory containing the document store")
	storeCmd.PersistentFlags().String("owner", "local", "owner whose documents to operate on")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeSearchCmd)
	storeCmd.AddCommand(storeDeleteCmd)

	rootCmd.AddCommand(storeCmd)
}

func openStore(cmd *cobra.Command) (*store.Store, string, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	owner, _ := cmd.Flags().GetString("owner")
	s, err := store.New(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return nil, "", err
	}
	return s, owner, nil
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents, newest first",
	RunE:  runStoreList,
}

func init() {
	storeListCmd.Flags().Int("limit", 0, "maximum number of documents (default 50)")
	storeListCmd.Flags().Bool("json", false, "output as JSON")
}

func runStoreList(cmd *cobra.Command, args []string) error {
	s, owner, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	docs, err := s.List(context.Background(), owner, limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatDocuments(docs, jsonOutput)
}

func formatDocuments(docs []types.DocumentRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-40s  %-5s  %s\n", "ID", "Filename", "Score", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, d := range docs {
		name := d.Filename
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-40s  %-5d  %s\n", d.ID, name, d.Score, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(os.Stdout, "\n%d documents\n", len(docs))
	return nil
}

// --- show subcommand ---

var storeShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one document's Markdown and curation details",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreShow,
}

func init() {
	storeShowCmd.Flags().Bool("details", false, "print the curation details instead of the Markdown")
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	s, owner, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.Get(context.Background(), args[0], owner)
	if err != nil {
		return err
	}

	if details, _ := cmd.Flags().GetBool("details"); details {
		fmt.Println(doc.Details)
		return nil
	}
	fmt.Print(doc.Markdown)
	return nil
}

// --- search subcommand ---

var storeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over stored Markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStoreSearch,
}

func init() {
	storeSearchCmd.Flags().Int("limit", 0, "maximum number of results (default 50)")
	storeSearchCmd.Flags().Bool("json", false, "output as JSON")
}

func runStoreSearch(cmd *cobra.Command, args []string) error {
	s, owner, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	docs, err := s.Search(context.Background(), owner, strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatDocuments(docs, jsonOutput)
}

// --- delete subcommand ---

var storeDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreDelete,
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	s, owner, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(context.Background(), args[0], owner); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
