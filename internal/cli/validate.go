package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/traitcalc/traitcalc/internal/actuator"
	"github.com/traitcalc/traitcalc/internal/checker"
	"github.com/traitcalc/traitcalc/internal/config"
	"github.com/traitcalc/traitcalc/internal/logging"
)

func (a *app) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <result-file>",
		Short: "Re-check a result file against the reference tables",
		Long: `validate recomputes the cost, the activated traits and the target-region
count of every combination in a result file, then prints summary statistics
and the best combinations under each ranking. It fails when any combination
is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runValidate,
	}
	addTableFlags(cmd)
	cmd.Flags().Int(config.KeyBest, config.DefaultBest, "combinations listed per ranking")
	cmd.Flags().Int(config.KeyTop, config.DefaultTop, "entries in the trait and unit frequency listings")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	idx, err := a.loadIndex(ctx)
	if err != nil {
		return err
	}
	c, err := checker.NewChecker(idx)
	if err != nil {
		return err
	}
	report, file, err := c.CheckFile(args[0])
	if err != nil {
		return err
	}
	if err := report.Write(a.out); err != nil {
		return err
	}
	if file == nil {
		return ErrInvalidResult
	}

	fmt.Fprintln(a.out)
	if err := c.Summarize(file, a.v.GetInt(config.KeyTop)).Write(a.out); err != nil {
		return err
	}
	for _, strategy := range checker.RankingStrategies {
		ranker, err := checker.NewRanker(strategy)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out)
		if err := checker.WriteBest(a.out, ranker, c.Best(file, ranker, a.v.GetInt(config.KeyBest))); err != nil {
			return err
		}
	}

	logging.FromContext(ctx).Info("Validated result file",
		"path", args[0], "valid", report.Valid, "invalid", report.Invalid)
	if !report.OK() {
		return ErrInvalidResult
	}
	return nil
}

func (a *app) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <result-file> <index>",
		Short: "Show one combination of a result file in detail",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runInspect,
	}
	addTableFlags(cmd)
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	i, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("combination index must be an integer, got %q", args[1])
	}
	idx, err := a.loadIndex(cmd.Context())
	if err != nil {
		return err
	}
	c, err := checker.NewChecker(idx)
	if err != nil {
		return err
	}
	file, err := actuator.ReadComboFile(args[0])
	if err != nil {
		return err
	}
	in, err := c.Inspect(file, i)
	if err != nil {
		return err
	}
	return in.Write(a.out)
}
