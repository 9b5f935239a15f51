package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidmeta/internal/extract"
	"vidmeta/internal/media"
)

var getCmd = &cobra.Command{
	Use:   "get <field> <video>",
	Short: "Extract a single field, including description",
	Long: `Extract a single field from a video's watch page.

Fields not in the full record, such as description, are available here.
Retired fields report that their data is no longer published.
Run "vidmeta fields" to list the available names.`,
	Args: cobra.ExactArgs(2),
	RunE: getRun,
}

func getRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	field, arg := args[0], args[1]
	id := resolve(arg)
	logger.Debug("extracting field", "field", field, "id", id.ID, "url", id.URL)

	v, err := newEngine().Field(ctx, id, field)
	switch {
	case errors.Is(err, extract.ErrUnknownField):
		return fmt.Errorf("unknown field %q (available: %s)", field, strings.Join(extract.DefaultRegistry().Fields(), ", "))
	case errors.Is(err, extract.ErrPermanentlyUnavailable):
		return fmt.Errorf("no longer available: %w", err)
	case err != nil:
		return fmt.Errorf("%s: %s", arg, describeError(err))
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]media.Value{field: v})
	}
	if v.IsAbsent() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s not found on the page\n", arg, field)
		return nil
	}
	printerFor(cmd).Value(v)
	return nil
}
