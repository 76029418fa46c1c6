// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/pkg/types"
)

var compatCmd = &cobra.Command{
	Use:   "compat <target-author-id>",
	Short: "Score collaboration compatibility between two researchers",
	Long: `Compat builds research profiles for the user and the target author and
scores them on topic similarity, co-author distance, institution proximity and
recency alignment, with supporting evidence.

Author ids may be given in short form (A1969205032) or as full OpenAlex URLs.
Without --user the configured engine.default_user_id is compared against.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompat,
}

func runCompat(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")
	savePath, _ := cmd.Flags().GetString("save")

	e, r, closeLive, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeLive()

	res, err := e.Compatibility(context.Background(), user, args[0])
	if err != nil {
		return err
	}

	if savePath != "" {
		err := report.Save(savePath, report.Saved[*types.CompatibilityResult]{
			Command: "compat",
			Params:  map[string]string{"user": res.UserID, "target": res.TargetID},
			Source:  r.Name(),
			Result:  res,
		})
		if err != nil {
			return err
		}
	}

	if format == report.FormatText {
		report.WriteCompatibility(os.Stdout, res)
		return nil
	}
	return report.Encode(os.Stdout, format, res)
}

func init() {
	compatCmd.Flags().String("user", "", "author id to compare against (default: engine.default_user_id)")
	compatCmd.Flags().String("save", "", "also save the result to this file (.json or .yaml)")

	rootCmd.AddCommand(compatCmd)
}
