package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqkey/internal/statement"
)

// RenderResult is the output of the render command.
type RenderResult struct {
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
	Args    []any  `json:"args"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "render -f <request.yaml>",
		Short: "Render a request as parameterized SQL",
		Long: `Render the request described by a YAML file as SQL for --dialect.

Values are printed as arguments and never interpolated into the SQL.
Table hints are only accepted by the sqlserver dialect.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, file, cmd)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (required)")
	return cmd
}

func runRender(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	dialect, err := opts.dialect()
	if err != nil {
		return formatter.Fail(err)
	}
	rf, err := LoadRequestFile(file)
	if err != nil {
		return formatter.Fail(err)
	}
	req, err := rf.Request()
	if err != nil {
		return formatter.Fail(err)
	}

	stmt, err := statement.NewSQLBuilder(dialect).Build(req)
	if err != nil {
		return formatter.Fail(err)
	}

	result := RenderResult{Dialect: dialect.Name, SQL: stmt.SQL, Args: stmt.Args}
	if result.Args == nil {
		result.Args = []any{}
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	if len(result.Args) > 0 {
		fmt.Fprintf(formatter.Writer, "-- args: %v\n", result.Args)
	}
	return nil
}

// dialect resolves the configured dialect, defaulting to sqlite.
func (o *RootOptions) dialect() (statement.Dialect, error) {
	if o.Dialect == "" {
		return statement.SQLite, nil
	}
	return statement.LookupDialect(o.Dialect)
}
