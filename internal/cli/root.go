// Package cli implements the traitcalc command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/traitcalc/traitcalc/internal/collector"
	"github.com/traitcalc/traitcalc/internal/config"
	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/pkg/core"
)

// ErrInvalidResult is returned by validate when a result file fails a check.
var ErrInvalidResult = errors.New("result file contains invalid combinations")

// app carries what every command shares.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
}

// NewRootCommand builds the traitcalc command tree. Reports go to out,
// logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: config.NewViper(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "traitcalc",
		Short: "Search team compositions that activate many target-region traits",
		Long: `traitcalc enumerates every team within a size range and a cost budget
that activates at least a minimum number of target-region traits, and checks,
summarizes and filters the resulting files.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.String(config.KeyConfig, "", "config file (YAML, JSON or TOML)")
	pf.String(config.KeyLogLevel, config.DefaultLogLevel, "log level: trace, debug, info, warn or error")
	pf.String(config.KeyLogFormat, config.DefaultLogFormat, "log format: text or json")

	root.AddCommand(
		a.searchCommand(),
		a.validateCommand(),
		a.inspectCommand(),
		a.filterCommand(),
		a.ingestCommand(),
	)
	return root
}

// Execute runs the command line args under ctx.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// setup binds the flags of the running command, merges the config file and
// installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	if err := config.ReadConfigFile(a.v, a.v.GetString(config.KeyConfig)); err != nil {
		return err
	}
	lc, err := config.LoggingFromViper(a.v)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(lc.Level, lc.Format, a.errOut)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.IntoContext(ctx, logger.WithName(cmd.Name())))
	return nil
}

// addTableFlags declares the reference table flags shared by several commands.
func addTableFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.String(config.KeyTraits, config.DefaultTraitsPath, "trait table (JSON, YAML or markup page)")
	fs.String(config.KeyCosts, config.DefaultCostsPath, "unit cost table (JSON or YAML)")
	fs.StringSlice(config.KeyRegions, nil, "target-region traits, replacing the default list")
}

// loadIndex collects the reference tables and builds the index.
func (a *app) loadIndex(ctx context.Context) (*core.Index, error) {
	tc, err := config.TablesFromViper(a.v)
	if err != nil {
		return nil, fmt.Errorf("invalid table config: %w", err)
	}
	tables, err := collector.NewTableSource(tc.TraitsPath, tc.CostsPath).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting reference tables: %w", err)
	}
	idx, err := core.NewIndex(tables, tc.RegionSet())
	if err != nil {
		return nil, fmt.Errorf("building reference index: %w", err)
	}
	return idx, nil
}
