package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/form990-cli/internal/schedule"
)

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "List the schedule variables the parser resolves",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("schedule")
		formatVariables(os.Stdout, schedule.Variables(), name)
		return nil
	},
}

func init() {
	variablesCmd.Flags().String("schedule", "", "only list variables of this schedule")
	rootCmd.AddCommand(variablesCmd)
}

func formatVariables(out io.Writer, vars []schedule.Variable, only string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCHEDULE\tPART\tVARIABLE\tPATH")
	_, _ = fmt.Fprintln(w, "--------\t----\t--------\t----")
	for _, v := range vars {
		if only != "" && v.Schedule != only {
			continue
		}
		part := v.Part
		if v.Group {
			part += " (group)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Schedule, part, v.Name, v.Path)
	}
	_ = w.Flush()
}
