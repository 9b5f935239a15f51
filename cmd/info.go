package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidmeta/internal/extract"
	"vidmeta/internal/history"
	"vidmeta/internal/media"
	"vidmeta/internal/provider"
)

var infoCmd = &cobra.Command{
	Use:   "info <video>...",
	Short: "Extract the full metadata record of one or more videos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  infoRun,
}

// infoResult is the JSON shape of one video in info output.
type infoResult struct {
	Input  string        `json:"input"`
	Record *media.Record `json:"record,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func infoRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine := newEngine()
	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	results := make([]infoResult, 0, len(args))
	failed := 0
	for _, arg := range args {
		id := resolve(arg)
		logger.Debug("extracting record", "input", arg, "id", id.ID, "url", id.URL)

		rec, err := engine.All(ctx, id)
		if err != nil {
			failed++
			results = append(results, infoResult{Input: arg, Error: describeError(err)})
			continue
		}
		results = append(results, infoResult{Input: arg, Record: &rec})

		if store != nil {
			if snap, err := store.Save(ctx, id, rec); err != nil {
				logger.Warn("saving snapshot failed", "id", id.ID, "error", err)
			} else {
				logger.Debug("saved snapshot", "snapshot", snap.ID, "id", id.ID)
			}
		}
	}

	if flagJSON {
		var out any = results
		if len(results) == 1 {
			out = results[0]
		}
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		p := printerFor(cmd)
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if r.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Input, r.Error)
				continue
			}
			p.Record(*r.Record)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(args))
	}
	return nil
}

// openHistory opens the snapshot store when history is enabled. Failure to
// open it is logged and disables history for the run.
func openHistory() *history.Store {
	if !cfg.History {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		logger.Warn("resolving history path failed", "error", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("opening history failed", "path", path, "error", err)
		return nil
	}
	return store
}

// describeError turns extraction errors into a one-line message for users.
func describeError(err error) string {
	var (
		blocked  *provider.BlockedError
		status   *provider.HTTPStatusError
		tooLarge *provider.TooLargeError
		fetchErr *extract.FetchError
	)
	switch {
	case errors.As(err, &blocked):
		return fmt.Sprintf("the site served a %s page instead of the video (try again later or set a language)", blocked.Reason)
	case errors.As(err, &status):
		return fmt.Sprintf("the site answered HTTP %d", status.StatusCode)
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("the page is larger than %d bytes", tooLarge.Limit)
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("fetching %s: %v", fetchErr.URL, fetchErr.Err)
	default:
		return err.Error()
	}
}
