package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gastos/internal/backend"
	"gastos/internal/cli"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/services"
)

func reportCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print totals by person and by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch by {
			case "all", "person", "category":
			default:
				return fmt.Errorf("--by must be all, person or category, got %q", by)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg, log.ComponentReports)

			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			// Reports only read; no events to publish.
			backendCfg.AMQPURL = ""
			res, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), backendCfg)
			if err != nil {
				return fmt.Errorf("create backend: %w", err)
			}
			defer res.Cleanup()

			reports := services.NewReportService(res.Store)
			out := cmd.OutOrStdout()

			if by != "category" {
				r, err := reports.TotalsByPerson(cmd.Context())
				if err != nil {
					return err
				}
				if err := writePersonTotals(out, r); err != nil {
					return err
				}
			}
			if by == "all" {
				fmt.Fprintln(out)
			}
			if by != "person" {
				r, err := reports.TotalsByCategory(cmd.Context())
				if err != nil {
					return err
				}
				if err := writeCategoryTotals(out, r); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "all", "which report to print (all, person, category)")
	return cmd
}

func writePersonTotals(w io.Writer, r core.Report[core.PersonTotals]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAGE\tINCOME\tEXPENSE\tBALANCE")
	for _, it := range r.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", it.ID, it.Name, it.Age, it.IncomeSum, it.ExpenseSum, it.Balance)
	}
	writeGrandTotal(tw, r.GrandTotal)
	return tw.Flush()
}

func writeCategoryTotals(w io.Writer, r core.Report[core.CategoryTotals]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIPTION\tPURPOSE\tINCOME\tEXPENSE\tBALANCE")
	for _, it := range r.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Description, it.Purpose, it.IncomeSum, it.ExpenseSum, it.Balance)
	}
	writeGrandTotal(tw, r.GrandTotal)
	return tw.Flush()
}

func writeGrandTotal(w io.Writer, g core.GrandTotal) {
	fmt.Fprintf(w, "\tTOTAL\t\t%s\t%s\t%s\n", g.Income, g.Expense, g.Balance)
}
