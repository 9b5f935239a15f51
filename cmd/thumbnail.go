package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vidmeta/internal/download"
	"vidmeta/internal/httputil"
	"vidmeta/internal/media"
)

var flagThumbnailDir string

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail <video>",
	Short: "Download a video's thumbnail image",
	Args:  cobra.ExactArgs(1),
	RunE:  thumbnailRun,
}

func init() {
	thumbnailCmd.Flags().StringVarP(&flagThumbnailDir, "output", "o", "", "Output directory (default from config: download_dir)")
}

func thumbnailRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	id := resolve(args[0])
	v, err := newEngine().Field(ctx, id, media.FieldThumbnail)
	if err != nil {
		return fmt.Errorf("%s: %s", args[0], describeError(err))
	}
	imageURL, ok := v.Str()
	if !ok || imageURL == "" {
		return fmt.Errorf("%s: no thumbnail found on the page", args[0])
	}
	logger.Debug("thumbnail found", "id", id.ID, "url", imageURL)

	dir := flagThumbnailDir
	if dir == "" {
		dir, err = cfg.ExpandDownloadDir()
		if err != nil {
			return err
		}
	}

	path, err := download.Thumbnail(ctx, httputil.NewClient(cfg.Timeout()), imageURL, dir, id.ID)
	if err != nil {
		return fmt.Errorf("downloading thumbnail: %w", err)
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"id": id.ID, "url": imageURL, "path": path})
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
