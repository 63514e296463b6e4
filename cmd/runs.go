package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/form990-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs <object_id>",
	Short: "List saved builds of a filing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("runs: no store configured (FORM990_STORE_DRIVER)")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, args[0], limit)
		if err != nil {
			return eris.Wrap(err, "runs")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tOBJECT_ID\tFORM\tPEOPLE\tROWS\tFAILED\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t---------\t----\t------\t----\t------\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.ObjectID,
			r.Form,
			r.People,
			r.Rows,
			failedCategories(r.Failures.Header, r.Failures.Balance, r.Failures.Compensation),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func failedCategories(header, balance, compensation bool) string {
	var s string
	for _, c := range []struct {
		failed bool
		name   string
	}{{header, "header"}, {balance, "balance"}, {compensation, "compensation"}} {
		if !c.failed {
			continue
		}
		if s != "" {
			s += ","
		}
		s += c.name
	}
	if s == "" {
		return "-"
	}
	return s
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
