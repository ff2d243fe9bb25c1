package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/traitcalc/traitcalc/internal/actuator"
	"github.com/traitcalc/traitcalc/internal/collector"
	"github.com/traitcalc/traitcalc/internal/config"
	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/internal/metrics"
	"github.com/traitcalc/traitcalc/internal/optimizer"
	pkgconfig "github.com/traitcalc/traitcalc/pkg/config"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

func (a *app) searchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search every valid composition and write the result file",
		Args:  cobra.NoArgs,
		RunE:  a.runSearch,
	}
	addTableFlags(cmd)
	fs := cmd.Flags()
	fs.String(config.KeyOutput, config.DefaultOutputPath, "result file")
	fs.Int(config.KeyStartUnits, pkgconfig.DefaultStartUnits, "smallest team size")
	fs.Int(config.KeyMaxUnits, pkgconfig.DefaultMaxUnits, "largest team size")
	fs.Int(config.KeyMaxCost, pkgconfig.DefaultMaxCost, "inclusive cost budget")
	fs.StringSlice(config.KeyRequired, nil, "units every composition must contain (repeatable or comma separated)")
	fs.Bool(config.KeySkipUnknownRequired, false, "drop required units that are not eligible instead of failing")
	fs.Int(config.KeyMinRegions, pkgconfig.DefaultMinRegions, "minimum number of activated target regions")
	fs.Int(config.KeyWorkers, config.DefaultWorkers, "concurrent search tasks")
	fs.Duration(config.KeyTimeout, 0, "stop the search after this long and keep partial results (0 disables)")
	fs.String(config.KeyMetricsFile, "", "write search metrics in Prometheus text format to this file")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}

	spec := solver.OptimizerSpec{Workers: cfg.Workers, RequiredPolicy: cfg.RequiredPolicy()}
	var sm *metrics.SearchMetrics
	if cfg.MetricsFile != "" {
		if sm, err = metrics.NewSearchMetrics(nil); err != nil {
			return err
		}
		spec.Observer = sm
	}

	opt, err := optimizer.NewOptimizer(
		collector.NewTableSource(cfg.TraitsPath, cfg.CostsPath),
		actuator.NewActuator(cfg.OutputPath),
		optimizer.Config{
			Regions: cfg.RegionSet(),
			Search:  cfg.Search,
			Solver:  spec,
			Timeout: cfg.Timeout,
		},
	)
	if err != nil {
		return err
	}
	outcome, err := opt.Optimize(ctx)
	if err != nil {
		return err
	}

	if sm != nil {
		if err := sm.WriteFile(cfg.MetricsFile); err != nil {
			return err
		}
		logger.V(logging.DEBUG).Info("Wrote metrics file", "path", cfg.MetricsFile)
	}

	res := outcome.Result
	var b strings.Builder
	for _, sr := range res.Sizes {
		fmt.Fprintf(&b, "Team size %d: %d combinations\n", sr.TeamSize, sr.Found)
	}
	fmt.Fprintf(&b, "Found %d combinations in %s", res.Total, res.Elapsed.Round(time.Millisecond))
	if res.Truncated {
		b.WriteString(" (search stopped early, result is partial)")
	}
	fmt.Fprintf(&b, "\nWrote %s\n", cfg.OutputPath)
	_, err = fmt.Fprint(a.out, b.String())
	return err
}
