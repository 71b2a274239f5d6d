package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reqkey/internal/predicate"
)

// HashResult is the output of the hash command.
type HashResult struct {
	Hash     string   `json:"hash"`
	Request  string   `json:"request"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "hash -f <request.yaml>",
		Short: "Print the structural hash of a request",
		Long: `Build the request described by a YAML file and print its structural hash.

Two files describing the same request (filters in any order, equivalent
empty components) print the same hash. Portability warnings for the
filter are listed after the hash.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(rootOpts, file, cmd)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (required)")
	return cmd
}

func runHash(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rf, err := LoadRequestFile(file)
	if err != nil {
		return formatter.Fail(err)
	}
	req, err := rf.Request()
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Built %s", req)

	result := HashResult{
		Hash:     fmt.Sprintf("%016x", req.Hash()),
		Request:  req.String(),
		Portable: true,
	}
	if g, ok := req.Where(); ok {
		v := predicate.Validate(g)
		result.Portable = v.IsPortable
		result.Warnings = v.Warnings
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.Hash)
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "warning: %s\n", w)
	}
	return nil
}
