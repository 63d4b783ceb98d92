package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/svi-cli/internal/census"
	"github.com/sells-group/svi-cli/internal/model"
)

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "List the built-in variable catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatVariables(os.Stdout, census.Catalog())
		return nil
	},
}

func formatVariables(out io.Writer, defs []model.VariableDef) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDIRECTION\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t---------\t-----------")
	for _, d := range defs {
		direction := "direct"
		if d.Inverse {
			direction = "inverse"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, direction, d.Description)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(variablesCmd)
}
