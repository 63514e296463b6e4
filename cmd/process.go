package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/form990-cli/internal/export"
	"github.com/sells-group/form990-cli/internal/form990"
	"github.com/sells-group/form990-cli/internal/schedule"
	"github.com/sells-group/form990-cli/internal/store"
)

// processOptions are the resolved settings of one process invocation.
type processOptions struct {
	Form      string
	Remap     []string
	RemapFile string
	EmitEmpty bool
	Out       string
	Save      bool
}

var processCmd = &cobra.Command{
	Use:   "process <object_id>",
	Short: "Process one e-file return into flat rows",
	Long: `Fetches the return header, Part VIII, and Schedule J of one e-file return and
writes one row per compensated person. Output goes to stdout as JSON unless
--out names a file; a .xlsx extension writes a spreadsheet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opts := processOptionsFromFlags(cmd)

		src, err := initSource(cfg.Source)
		if err != nil {
			return err
		}

		var st store.Store
		if opts.Save {
			st, err = initStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			if st == nil {
				return eris.New("process: --save needs a store driver (FORM990_STORE_DRIVER)")
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
		}

		return runProcess(ctx, args[0], opts, schedule.NewRunner(src), st, os.Stdout)
	},
}

func init() {
	f := processCmd.Flags()
	f.String("form", "", "filing variant: 990 or base (default from config)")
	f.StringArray("remap", nil, "rename an output column, internal=output (repeatable)")
	f.String("remap-file", "", "YAML file of internal: output column names")
	f.Bool("emit-empty", false, "emit a header and balance row when the filing lists no people")
	f.String("out", "", "output file; .xlsx writes a spreadsheet, anything else JSON (default stdout)")
	f.Bool("save", false, "save rows to the configured store")

	rootCmd.AddCommand(processCmd)
}

// processOptionsFromFlags resolves flags, falling back to config for unset ones.
func processOptionsFromFlags(cmd *cobra.Command) processOptions {
	f := cmd.Flags()
	opts := processOptions{
		Form:      cfg.Form990.Form,
		RemapFile: cfg.Form990.RemapFile,
		EmitEmpty: cfg.Form990.EmitEmpty,
	}
	if f.Changed("form") {
		opts.Form, _ = f.GetString("form")
	}
	if f.Changed("remap-file") {
		opts.RemapFile, _ = f.GetString("remap-file")
	}
	if f.Changed("emit-empty") {
		opts.EmitEmpty, _ = f.GetBool("emit-empty")
	}
	opts.Remap, _ = f.GetStringArray("remap")
	opts.Out, _ = f.GetString("out")
	opts.Save, _ = f.GetBool("save")
	return opts
}

func buildRemap(opts processOptions) (form990.Remap, error) {
	var base form990.Remap
	if opts.RemapFile != "" {
		m, err := form990.LoadRemap(opts.RemapFile)
		if err != nil {
			return nil, err
		}
		base = m
	}
	flags, err := form990.ParseRemap(opts.Remap)
	if err != nil {
		return nil, err
	}
	return base.Merge(flags), nil
}

// runProcess builds one filing, writes its rows, and saves them when st is set.
func runProcess(ctx context.Context, objectID string, opts processOptions, f schedule.Fetcher, st store.Store, stdout io.Writer) error {
	if err := schedule.ValidateFilingID(objectID); err != nil {
		return err
	}
	variant, err := form990.ParseForm(opts.Form)
	if err != nil {
		return err
	}
	remap, err := buildRemap(opts)
	if err != nil {
		return err
	}

	filing, err := form990.Build(ctx, f, variant, objectID, remap)
	if err != nil {
		return eris.Wrapf(err, "process %s", objectID)
	}
	rows := filing.Flatten(form990.FlattenOptions{EmitEmpty: opts.EmitEmpty})

	if err := writeRows(opts.Out, rows, stdout); err != nil {
		return err
	}

	if st != nil {
		run, err := st.SaveFiling(ctx, filing, rows)
		if err != nil {
			return eris.Wrapf(err, "process %s: save", objectID)
		}
		zap.L().Info("filing saved",
			zap.String("object_id", objectID),
			zap.String("run_id", run.ID),
			zap.Int("rows", run.Rows),
		)
	}
	return nil
}

func writeRows(out string, rows []*form990.Record, stdout io.Writer) error {
	switch {
	case out == "" || out == "-":
		return export.WriteJSON(stdout, rows)
	case export.IsXLSX(out):
		return export.WriteXLSX(out, rows)
	}

	fh, err := os.Create(out)
	if err != nil {
		return eris.Wrapf(err, "process: create %s", out)
	}
	if err := export.WriteJSON(fh, rows); err != nil {
		fh.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(fh.Close(), "process: close %s", out)
}
