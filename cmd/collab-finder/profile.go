// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile <author-id>",
	Short: "Show the research profile built for an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		e, _, closeLive, err := buildEngine()
		if err != nil {
			return err
		}
		defer closeLive()

		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			a, err := e.Author(context.Background(), args[0])
			if err != nil {
				return err
			}
			if format == report.FormatText {
				report.WriteAuthors(os.Stdout, []types.AuthorRecord{a})
				return nil
			}
			return report.Encode(os.Stdout, format, a)
		}

		p, err := e.Profile(context.Background(), args[0])
		if err != nil {
			return err
		}
		if format == report.FormatText {
			report.WriteProfile(os.Stdout, p)
			return nil
		}
		return report.Encode(os.Stdout, format, p)
	},
}

func init() {
	profileCmd.Flags().Bool("summary", false, "show only the author summary record")
	rootCmd.AddCommand(profileCmd)
}
