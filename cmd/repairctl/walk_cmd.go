package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"repairflow/internal/domain"
	"repairflow/internal/flow/service"
	"repairflow/internal/pricing"
)

type walkParams struct {
	locale  string
	answers []string
}

type pricingSource interface {
	Pricing(ctx context.Context) (pricing.Tables, error)
}

func newWalkCmd() *cobra.Command {
	var p walkParams

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Print the steps a set of answers leads through",
		Long: `Apply answers to an empty order form and print the path the wizard takes,
with each step's group and missing required fields, followed by the price.

Answers are applied in order, so later ones see the effect of earlier ones.`,
		Example: `  repairctl walk --set garment=trousers --set repairType=hemming
  repairctl walk --locale en --set garment=shirt --set repairType=buttons --set buttonCount=4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			module, cliLogger, cleanup, err := contentModule(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return walk(ctx, cmd.OutOrStdout(), service.NewLoader(module.Source, cliLogger), module.Catalog, p)
		},
	}

	cmd.Flags().StringVar(&p.locale, "locale", domain.DefaultLocale, "Content locale")
	cmd.Flags().StringArrayVar(&p.answers, "set", nil, "Form answer as field=value (repeatable)")

	return cmd
}

func walk(ctx context.Context, out io.Writer, loader *service.Loader, prices pricingSource, p walkParams) error {
	flow, err := loader.Load(ctx, p.locale)
	if err != nil {
		return fmt.Errorf("load flow: %w", err)
	}

	state := domain.NewFormState(p.locale)
	for _, answer := range p.answers {
		field, value, err := parseAnswer(answer)
		if err != nil {
			return err
		}
		if err := state.Set(field, value, flow.Restrictions); err != nil {
			return fmt.Errorf("set %s: %w", field, err)
		}
	}

	nav := service.NewNavigator(flow)
	for i, slug := range nav.Path(state) {
		step, _ := flow.Step(slug)
		line := fmt.Sprintf("%2d. %-14s %-10s %s", i+1, slug, step.GroupID, step.Label)
		if missing, _ := nav.Missing(slug, state); len(missing) > 0 {
			line += "  (missing: " + strings.Join(missing, ", ") + ")"
		}
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}

	tables, err := prices.Pricing(ctx)
	if err != nil {
		return fmt.Errorf("load pricing: %w", err)
	}
	breakdown := pricing.Compute(state, tables)
	for _, l := range breakdown.Lines {
		fmt.Fprintf(out, "    %-9s %-24s %3d x %5d = %6d\n", l.Kind, l.Key, l.Quantity, l.UnitPrice, l.Amount)
	}
	fmt.Fprintf(out, "Total: %d NOK\n", breakdown.Total)
	return nil
}

func parseAnswer(s string) (string, string, error) {
	field, value, ok := strings.Cut(s, "=")
	if !ok || field == "" {
		return "", "", fmt.Errorf("answer %q must look like field=value", s)
	}
	if !domain.IsField(field) {
		return "", "", fmt.Errorf("unknown field %q", field)
	}
	return field, value, nil
}
