// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-finder/internal/network"
	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/pkg/types"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build co-authorship networks (author, topic)",
	Long: `Network renders the co-authorship graph of a set of works as nodes, weighted
links and degree statistics. Use --output json for graph-drawing consumers.`,
}

// --- author subcommand ---

var networkAuthorCmd = &cobra.Command{
	Use:   "author <author-id>",
	Short: "Network of an author's recent works",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNetwork(cmd, func(ctx context.Context, limit int) (types.Network, error) {
			e, _, closeLive, err := buildEngine()
			if err != nil {
				return types.Network{}, err
			}
			defer closeLive()
			return e.AuthorNetwork(ctx, args[0], limit)
		})
	},
}

// --- topic subcommand ---

var networkTopicCmd = &cobra.Command{
	Use:   "topic <concept-id>",
	Short: "Network of works tagged with a concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNetwork(cmd, func(ctx context.Context, limit int) (types.Network, error) {
			e, _, closeLive, err := buildEngine()
			if err != nil {
				return types.Network{}, err
			}
			defer closeLive()
			return e.TopicNetwork(ctx, args[0], limit)
		})
	},
}

func runNetwork(cmd *cobra.Command, build func(context.Context, int) (types.Network, error)) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit-works")

	n, err := build(context.Background(), limit)
	if err != nil {
		return err
	}
	if format == report.FormatText {
		report.WriteNetwork(os.Stdout, n)
		return nil
	}
	return report.Encode(os.Stdout, format, n)
}

func init() {
	networkCmd.PersistentFlags().Int("limit-works", network.DefaultLimitWorks, "works to include (1-200)")

	networkCmd.AddCommand(networkAuthorCmd)
	networkCmd.AddCommand(networkTopicCmd)
	rootCmd.AddCommand(networkCmd)
}
