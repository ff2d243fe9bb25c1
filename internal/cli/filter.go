package cli

import (
	"github.com/spf13/cobra"

	"github.com/traitcalc/traitcalc/internal/actuator"
	"github.com/traitcalc/traitcalc/internal/config"
	"github.com/traitcalc/traitcalc/internal/filter"
)

func (a *app) filterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <result-file>",
		Short: "List the combinations that contain the selected units",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runFilter,
	}
	cmd.Flags().StringSlice(config.KeyUnits, nil, "selected units (repeatable or comma separated)")
	cmd.Flags().Int(config.KeyLimit, config.DefaultLimit, "maximum number of listed combinations")
	return cmd
}

func (a *app) runFilter(_ *cobra.Command, args []string) error {
	file, err := actuator.ReadComboFile(args[0])
	if err != nil {
		return err
	}
	res, err := filter.Filter(file.Combinations, config.StringList(a.v, config.KeyUnits), a.v.GetInt(config.KeyLimit))
	if err != nil {
		return err
	}
	return res.Write(a.out)
}
