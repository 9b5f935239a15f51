package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidmeta/internal/history"
	"vidmeta/internal/media"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [video]",
	Short: "Show stored snapshots, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Maximum snapshots to show (0 for all)")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the stored snapshots of the given video")
}

// snapshotJSON is the JSON shape of one stored snapshot.
type snapshotJSON struct {
	ID        string       `json:"id"`
	VideoID   string       `json:"video_id"`
	URL       string       `json:"url"`
	FetchedAt string       `json:"fetched_at"`
	Record    media.Record `json:"record"`
}

func historyRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	videoID := ""
	if len(args) == 1 {
		videoID = resolve(args[0]).ID
	}

	if flagHistoryClear {
		if videoID == "" {
			return fmt.Errorf("--clear needs a video")
		}
		n, err := store.Remove(ctx, videoID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshots of %s.\n", n, videoID)
		return nil
	}

	snaps, err := store.List(ctx, videoID, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if flagJSON {
		out := make([]snapshotJSON, len(snaps))
		for i, s := range snaps {
			out[i] = snapshotJSON{
				ID:        s.ID,
				VideoID:   s.VideoID,
				URL:       s.URL,
				FetchedAt: s.FetchedAt.Format("2006-01-02T15:04:05.000Z07:00"),
				Record:    s.Record,
			}
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries found.")
		return nil
	}
	printerFor(cmd).Snapshots(snaps)
	return nil
}
