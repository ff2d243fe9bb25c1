package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traitcalc/traitcalc/internal/config"
	"github.com/traitcalc/traitcalc/internal/ingest"
	"github.com/traitcalc/traitcalc/internal/logging"
	pkgconfig "github.com/traitcalc/traitcalc/pkg/config"
)

func (a *app) ingestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <page.html>",
		Short: "Extract the trait and cost tables from a markup page",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runIngest,
	}
	cmd.Flags().String(config.KeyTraitsOut, config.DefaultTraitsPath, "trait table to write (.json, .yaml or .yml)")
	cmd.Flags().String(config.KeyCostsOut, config.DefaultCostsPath, "cost table to write (.json, .yaml or .yml)")
	return cmd
}

func (a *app) runIngest(cmd *cobra.Command, args []string) error {
	tables, err := ingest.ParseFile(args[0])
	if err != nil {
		return err
	}
	traitsOut := a.v.GetString(config.KeyTraitsOut)
	costsOut := a.v.GetString(config.KeyCostsOut)
	if err := pkgconfig.SaveTraitData(traitsOut, tables.Traits); err != nil {
		return err
	}
	if err := pkgconfig.SaveCostData(costsOut, tables.Costs); err != nil {
		return err
	}
	logging.FromContext(cmd.Context()).V(logging.DEBUG).Info("Ingested markup page",
		"page", args[0], "traits", len(tables.Traits), "units", len(tables.Costs))
	_, err = fmt.Fprintf(a.out, "Extracted %d traits to %s and %d unit costs to %s\n",
		len(tables.Traits), traitsOut, len(tables.Costs), costsOut)
	return err
}
