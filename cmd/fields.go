package cmd

import (
	"github.com/spf13/cobra"

	"vidmeta/internal/extract"
	"vidmeta/internal/ui"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields that can be extracted",
	Args:  cobra.NoArgs,
	RunE:  fieldsRun,
}

// fieldJSON is the JSON shape of one registered field.
type fieldJSON struct {
	Name    string   `json:"name"`
	Scope   string   `json:"scope"`
	Aliases []string `json:"aliases,omitempty"`
	Note    string   `json:"note,omitempty"`
}

func fieldsRun(cmd *cobra.Command, args []string) error {
	reg := extract.DefaultRegistry()
	rules := reg.Rules()

	infos := make([]ui.FieldInfo, 0, len(rules))
	for _, r := range rules {
		infos = append(infos, ui.FieldInfo{
			Name:    r.Field,
			Scope:   r.Scope.String(),
			Aliases: reg.Aliases(r.Field),
			Note:    r.Note,
		})
	}

	if flagJSON {
		out := make([]fieldJSON, len(infos))
		for i, f := range infos {
			out[i] = fieldJSON(f)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printerFor(cmd).Fields(infos)
	return nil
}
