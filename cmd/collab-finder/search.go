// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-finder/internal/engine"
	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up concepts, authors and institutions",
}

var searchConceptsCmd = &cobra.Command{
	Use:   "concepts <text>",
	Short: "Search concepts by name or description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd, func(ctx context.Context, e *engine.Engine, limit int, format report.Format) error {
			cs, err := e.SearchConcepts(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if format == report.FormatText {
				report.WriteConcepts(os.Stdout, cs)
				return nil
			}
			return report.Encode(os.Stdout, format, cs)
		})
	},
}

var searchAuthorsCmd = &cobra.Command{
	Use:   "authors [text]",
	Short: "Search authors by name, or list authors of a concept with --concept",
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, _ := cmd.Flags().GetString("concept")
		return runSearch(cmd, func(ctx context.Context, e *engine.Engine, limit int, format report.Format) error {
			var (
				as  []types.AuthorRecord
				err error
			)
			if concept != "" {
				as, err = e.AuthorsByConcept(ctx, concept, limit)
			} else {
				as, err = e.SearchAuthors(ctx, strings.Join(args, " "), limit)
			}
			if err != nil {
				return err
			}
			if format == report.FormatText {
				report.WriteAuthors(os.Stdout, as)
				return nil
			}
			return report.Encode(os.Stdout, format, as)
		})
	},
}

var searchInstitutionsCmd = &cobra.Command{
	Use:   "institutions [text]",
	Short: "Search institutions by name, or list institutions of a concept with --concept",
	RunE: func(cmd *cobra.Command, args []string) error {
		concept, _ := cmd.Flags().GetString("concept")
		return runSearch(cmd, func(ctx context.Context, e *engine.Engine, limit int, format report.Format) error {
			var (
				is  []types.InstitutionRecord
				err error
			)
			if concept != "" {
				is, err = e.InstitutionsByConcept(ctx, concept, limit)
			} else {
				is, err = e.SearchInstitutions(ctx, strings.Join(args, " "), limit)
			}
			if err != nil {
				return err
			}
			if format == report.FormatText {
				report.WriteInstitutions(os.Stdout, is)
				return nil
			}
			return report.Encode(os.Stdout, format, is)
		})
	},
}

func runSearch(cmd *cobra.Command, run func(context.Context, *engine.Engine, int, report.Format) error) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	e, _, closeLive, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeLive()
	return run(context.Background(), e, limit, format)
}

func init() {
	searchCmd.PersistentFlags().Int("limit", 0, "maximum results (default 10, or 50 with --concept; max 50)")
	searchAuthorsCmd.Flags().String("concept", "", "list authors tagged with this concept id")
	searchInstitutionsCmd.Flags().String("concept", "", "list institutions tagged with this concept id")

	searchCmd.AddCommand(searchConceptsCmd)
	searchCmd.AddCommand(searchAuthorsCmd)
	searchCmd.AddCommand(searchInstitutionsCmd)
	rootCmd.AddCommand(searchCmd)
}
