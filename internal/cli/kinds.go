package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/reqkey/internal/request"
)

// KindInfo describes one registered request kind.
type KindInfo struct {
	Kind     string `json:"kind"`
	Shape    string `json:"shape"`
	Accepts  string `json:"accepts"`
	Requires string `json:"requires,omitempty"`
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kinds",
		Short:         "List request kinds and the components they accept",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKinds(rootOpts, cmd)
		},
	}
	return cmd
}

func runKinds(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	specs := request.Kinds()
	infos := make([]KindInfo, len(specs))
	for i, s := range specs {
		infos[i] = KindInfo{
			Kind:    string(s.Kind),
			Shape:   s.Shape.String(),
			Accepts: s.Accepts.String(),
		}
		if s.Requires != 0 {
			infos[i].Requires = s.Requires.String()
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tSHAPE\tACCEPTS\tREQUIRES")
	for _, k := range infos {
		req := k.Requires
		if req == "" {
			req = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k.Kind, k.Shape, k.Accepts, req)
	}
	return tw.Flush()
}

// newFormatter builds the formatter for cmd's output streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	format := opts.Format
	if format == "" {
		format = "text"
	}
	return &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
