package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/reqkey/internal/statement"
)

// EnvPrefix prefixes environment overrides, e.g. REQKEY_DIALECT.
const EnvPrefix = "REQKEY"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional config file
	Dialect string // statement dialect for render

	viper  *viper.Viper
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the reqkey CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "reqkey",
		Short: "reqkey - hashable database requests",
		Long: `Build canonical, hashable database requests from YAML descriptions,
print their structural hash, and render or run them as SQL.

Flags can also be set through REQKEY_* environment variables or a
config file (--config).`,
		SilenceErrors: true, // main reports errors the commands did not print
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", statement.SQLite.Name,
		"SQL dialect ("+strings.Join(statement.DialectNames(), "|")+")")

	// Add subcommands
	cmd.AddCommand(NewKindsCommand(opts))
	cmd.AddCommand(NewHashCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))

	return cmd
}

// load merges flags, REQKEY_* environment variables and the config file
// into opts. Explicit flags win over the environment, which wins over the
// config file.
func (o *RootOptions) load(cmd *cobra.Command) error {
	v := o.viper
	if v == nil {
		v = viper.New()
		o.viper = v
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	if o.Config != "" {
		v.SetConfigFile(o.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", o.Config, err)
		}
	}

	o.Verbose = v.GetBool("verbose")
	o.Format = v.GetString("format")
	o.Dialect = v.GetString("dialect")

	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	if _, err := statement.LookupDialect(o.Dialect); err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// Logger returns the command logger, writing to stderr.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// String returns a bound setting by key, e.g. "db".
func (o *RootOptions) String(key string) string {
	if o.viper == nil {
		return ""
	}
	return o.viper.GetString(key)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
