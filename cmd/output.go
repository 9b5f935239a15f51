package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vidmeta/internal/ui"
)

// printerFor returns a printer for the command's stdout, styled only when
// stdout is a terminal.
func printerFor(cmd *cobra.Command) *ui.Printer {
	w := cmd.OutOrStdout()
	if f, ok := w.(*os.File); ok && ui.IsTerminal(f) {
		return ui.NewPrinter(f, true, ui.Width(f))
	}
	return ui.NewPrinter(w, false, 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
