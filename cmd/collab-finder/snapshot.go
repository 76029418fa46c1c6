// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/collab-finder/internal/offline"
	"github.com/pdiddy/collab-finder/internal/report"
	"github.com/pdiddy/collab-finder/internal/source/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the local SQLite snapshot (import, export)",
	Long: `Snapshot manages a local SQLite copy of bibliographic records that can serve
as the live record source (source.backend: snapshot). Import seeds it from a
corpus file in the offline corpus layout, or from the built-in corpus; export
writes its contents back out in that layout.`,
}

// --- import subcommand ---

var snapshotImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a corpus into the snapshot database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")

		var (
			corpus *offline.Corpus
			err    error
		)
		if from != "" {
			corpus, err = offline.LoadFile(from)
		} else {
			corpus, err = offline.Load()
		}
		if err != nil {
			return err
		}

		store, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		sum, err := store.Import(context.Background(), corpus.Dump())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Imported %d concepts, %d authors, %d institutions, %d works (%d skipped)\n",
			sum.Concepts, sum.Authors, sum.Institutions, sum.Works, sum.Skipped)
		return nil
	},
}

// --- export subcommand ---

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the snapshot contents as corpus YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		store, err := openSnapshot(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		w := os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		return report.Encode(w, report.FormatYAML, store.Dump())
	},
}

func openSnapshot(cmd *cobra.Command) (*snapshot.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = loadConfig().Source.SnapshotPath
	}
	return snapshot.Open(path, logger)
}

func init() {
	snapshotCmd.PersistentFlags().String("db", "", "snapshot database path (default source.snapshot_path)")
	snapshotImportCmd.Flags().String("from", "", "corpus YAML file to import (default: built-in corpus)")
	snapshotExportCmd.Flags().String("out", "", "output file (default: stdout)")

	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	rootCmd.AddCommand(snapshotCmd)
}
