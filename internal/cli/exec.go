package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/reqkey/internal/reqerr"
	"github.com/roach88/reqkey/internal/request"
	"github.com/roach88/reqkey/internal/store"
)

// ExecResult is the output of the exec command.
type ExecResult struct {
	Kind     string           `json:"kind"`
	Target   string           `json:"target"`
	Value    any              `json:"value"`
	Columns  []string         `json:"columns,omitempty"`
	Rows     []map[string]any `json:"rows,omitempty"`
	Affected *int64           `json:"affected,omitempty"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file string
		db   string
	)

	cmd := &cobra.Command{
		Use:   "exec -f <request.yaml> --db <path>",
		Short: "Run a request against a SQLite database",
		Long: `Run the request described by a YAML file against an existing SQLite
database and print the result:

  aggregates and counts   the single value
  exists                  true or false
  delete                  the number of deleted rows
  query                   the selected rows`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v := rootOpts.String("db"); v != "" {
				db = v
			}
			return runExec(rootOpts, file, db, cmd)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (required)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path (env REQKEY_DB)")
	return cmd
}

func runExec(opts *RootOptions, file, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if dbPath == "" {
		return formatter.Fail(&LoadError{Code: ErrCodeNotFound, Message: "no database given (use --db or REQKEY_DB)"})
	}
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", dbPath)})
	}

	rf, err := LoadRequestFile(file)
	if err != nil {
		return formatter.Fail(err)
	}
	req, err := rf.Request()
	if err != nil {
		return formatter.Fail(err)
	}

	ctx := cmd.Context()
	st, err := store.Open(ctx, "sqlite", dbPath, store.WithLogger(opts.Logger()))
	if err != nil {
		return formatter.Fail(&LoadError{Code: ErrCodeDatabase, Message: "opening database", Err: err})
	}
	defer st.Close()

	formatter.VerboseLog("Running %s", req)
	result := ExecResult{Kind: string(req.Kind()), Target: req.Name()}

	switch req.Spec().Shape {
	case request.ShapeExists:
		result.Value, err = st.Exists(ctx, req)
	case request.ShapeDelete:
		var n int64
		n, err = st.Exec(ctx, req)
		result.Value, result.Affected = n, &n
	case request.ShapeSelect:
		err = execRows(cmd, st, req, &result)
	default:
		result.Value, err = st.Scalar(ctx, req)
	}
	if err != nil {
		if reqerr.CodeOf(err) != "" {
			return formatter.Fail(err)
		}
		return formatter.Fail(&LoadError{Code: ErrCodeDatabase, Message: "running request", Err: err})
	}
	if b, ok := result.Value.([]byte); ok {
		result.Value = string(b)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return printExec(formatter, result)
}

func execRows(cmd *cobra.Command, st *store.Store, req *request.Request, result *ExecResult) error {
	rows, err := st.Rows(cmd.Context(), req)
	if err != nil {
		return err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	result.Columns = cols
	for rows.Next() {
		row := make(map[string]any, len(cols))
		if err := rows.MapScan(row); err != nil {
			return err
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	result.Value = len(result.Rows)
	return nil
}

func printExec(formatter *OutputFormatter, result ExecResult) error {
	w := formatter.Writer
	switch {
	case result.Affected != nil:
		fmt.Fprintf(w, "deleted %d row(s)\n", *result.Affected)
		return nil
	case result.Columns != nil:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(result.Columns, "\t"))
		for _, row := range result.Rows {
			cells := make([]string, len(result.Columns))
			for i, c := range result.Columns {
				if v := row[c]; v == nil {
					cells[i] = "NULL"
				} else {
					cells[i] = fmt.Sprint(v)
				}
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "(%d row(s))\n", len(result.Rows))
		return nil
	case result.Value == nil:
		fmt.Fprintln(w, "NULL")
		return nil
	default:
		fmt.Fprintln(w, result.Value)
		return nil
	}
}
