// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/pkg/types"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Rank topics and scientists by publication growth",
	Long: `Trending compares publication counts in the most recent window (default six
months) with the window before it and ranks topics by growth and scientists
by recent output. The top entries are enriched with summary details.`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

func runTrending(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	savePath, _ := cmd.Flags().GetString("save")

	e, r, closeLive, err := buildEngine()
	if err != nil {
		return err
	}
	defer closeLive()

	res, err := e.Trending(context.Background(), limit)
	if err != nil {
		return err
	}

	if savePath != "" {
		err := report.Save(savePath, report.Saved[*types.TrendingResult]{
			Command: "trending",
			Params:  map[string]string{"limit": strconv.Itoa(limit)},
			Source:  r.Name(),
			Result:  res,
		})
		if err != nil {
			return err
		}
	}

	if format == report.FormatText {
		report.WriteTrending(os.Stdout, res)
		return nil
	}
	return report.Encode(os.Stdout, format, res)
}

func init() {
	trendingCmd.Flags().Int("limit", 0, "entries per list (default trend.limit, max 20)")
	trendingCmd.Flags().String("save", "", "also save the result to this file (.json or .yaml)")

	rootCmd.AddCommand(trendingCmd)
}
