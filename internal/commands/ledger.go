package commands

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rosa-dev/rosa/internal/activity"
	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/report"
)

func newLedgerCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Read and edit beneficiary ledgers",
	}
	cmd.PersistentFlags().StringVar(&repoDir, "repo", ".", "project directory")

	cmd.AddCommand(newLedgerShowCommand(&repoDir))
	cmd.AddCommand(newLedgerSeriesCommand(&repoDir))
	cmd.AddCommand(newLedgerSetCommand(&repoDir))
	cmd.AddCommand(newLedgerAmendCommand(&repoDir))
	cmd.AddCommand(newLedgerAddItemCommand(&repoDir))
	cmd.AddCommand(newLedgerRemoveItemCommand(&repoDir))
	cmd.AddCommand(newLedgerAppendCommand(&repoDir))
	cmd.AddCommand(newLedgerCommitCommand(&repoDir))
	cmd.AddCommand(newLedgerImportCommand(&repoDir))
	cmd.AddCommand(newLedgerHistoryCommand(&repoDir))
	return cmd
}

// projectRunE opens the project around fn.
func projectRunE(repoDir *string, fn func(cmd *cobra.Command, p *project, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		p, err := openProject(*repoDir)
		if err != nil {
			return err
		}
		defer p.Close()
		return fn(cmd, p, args)
	}
}

func newLedgerShowCommand(repoDir *string) *cobra.Command {
	var sortBy, period string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the line items of a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			key, err := report.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			f, err := p.formatter()
			if err != nil {
				return err
			}
			l, err := p.svc.Ledger(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := l.Breakdown()
			series := l.NetTotalSeries()
			if period != "" {
				if _, err := l.Snapshot(period); err != nil {
					return err
				}
				rows = filterRows(rows, period)
				series = slices.DeleteFunc(series, func(pt ledger.PeriodTotal) bool { return pt.Period != period })
			}
			if len(series) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger has no periods.")
				return nil
			}
			return report.WriteBreakdown(cmd.OutOrStdout(), report.SortRows(rows, key), series, f)
		}),
	}

	cmd.Flags().StringVar(&sortBy, "sort", "", "order items by amount or label")
	cmd.Flags().StringVar(&period, "period", "", "only show one period (YYYY-MM)")
	return cmd
}

func filterRows(rows []model.LedgerRow, period string) []model.LedgerRow {
	var out []model.LedgerRow
	for _, r := range rows {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out
}

func newLedgerSeriesCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "series <id>",
		Short: "Show income, expenses and net total per period",
		Args:  cobra.ExactArgs(1),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			f, err := p.formatter()
			if err != nil {
				return err
			}
			series, err := p.svc.Series(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report.WriteSeries(cmd.OutOrStdout(), series, f)
		}),
	}
}

func newLedgerSetCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <period> <category> <label> <amount>",
		Short: "Set a line item amount",
		Args:  cobra.ExactArgs(5),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			f, err := p.formatter()
			if err != nil {
				return err
			}
			snap, err := p.svc.SetAmount(cmd.Context(), args[0], args[1], args[2], args[3], args[4])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s net total: %s (%s)\n", snap.Period(), f.Amount(snap.NetTotal()), snap.Status())
			return nil
		}),
	}
}

func newLedgerAmendCommand(repoDir *string) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "amend <id> <period> <category> <label> <amount>",
		Short: "Correct a line item in any period, with a reason",
		Args:  cobra.ExactArgs(5),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			f, err := p.formatter()
			if err != nil {
				return err
			}
			c, err := p.svc.Amend(cmd.Context(), args[0], args[1], args[2], args[3], args[4], reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Amended %s %s/%s: %s -> %s\n", c.Period, c.Category, c.Label, f.Amount(c.Old), f.Amount(c.New))
			return nil
		}),
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the amount changed (required)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newLedgerAddItemCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-item <id> <category> <label> [amount]",
		Short: "Add a line item to the latest period",
		Args:  cobra.RangeArgs(3, 4),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			amount := ""
			if len(args) == 4 {
				amount = args[3]
			}
			if err := p.svc.AddItem(cmd.Context(), args[0], args[1], args[2], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s/%s\n", args[1], args[2])
			return nil
		}),
	}
}

func newLedgerRemoveItemCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-item <id> <category> <label>",
		Short: "Remove a line item from the latest period",
		Args:  cobra.ExactArgs(3),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			if err := p.svc.RemoveItem(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s/%s\n", args[1], args[2])
			return nil
		}),
	}
}

func newLedgerAppendCommand(repoDir *string) *cobra.Command {
	var carryForward bool

	cmd := &cobra.Command{
		Use:   "append <id> <period>",
		Short: "Start a new period after the latest one",
		Args:  cobra.ExactArgs(2),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			carry := p.svc.CarryForward()
			if cmd.Flags().Changed("carry-forward") {
				carry = carryForward
			}
			if err := p.svc.AppendPeriod(cmd.Context(), args[0], args[1], carry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appended period %s\n", args[1])
			return nil
		}),
	}

	cmd.Flags().BoolVar(&carryForward, "carry-forward", false, "copy the previous period's amounts (default from rosa.yaml)")
	return cmd
}

func newLedgerCommitCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <id> <period>",
		Short: "Recompute a period and mark it clean",
		Args:  cobra.ExactArgs(2),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			f, err := p.formatter()
			if err != nil {
				return err
			}
			net, err := p.svc.Commit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %s: net total %s\n", args[1], f.Amount(net))
			return nil
		}),
	}
}

func newLedgerImportCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <id> <period>",
		Short: "Apply the intake forms waiting in import/ to a period",
		Args:  cobra.ExactArgs(2),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			res, err := p.svc.Import(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if len(res.Files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries from %d files\n", res.Entries, len(res.Files))
			return nil
		}),
	}
}

func newLedgerHistoryCommand(repoDir *string) *cobra.Command {
	var periodFlag string
	var actions []string

	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show amendments and activity for a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: projectRunE(repoDir, func(cmd *cobra.Command, p *project, args []string) error {
			f, err := p.formatter()
			if err != nil {
				return err
			}
			q := activity.Query{Period: periodFlag}
			for _, raw := range actions {
				a, err := activity.ParseAction(raw)
				if err != nil {
					return err
				}
				q.Actions = append(q.Actions, a)
			}
			changes, entries, err := p.svc.History(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "AMENDED\tPERIOD\tITEM\tOLD\tNEW\tREASON")
			for _, c := range changes {
				fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\t%s\t%s\n",
					c.At.Format(time.DateTime), c.Period, c.Category, c.Label, f.Amount(c.Old), f.Amount(c.New), c.Reason)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "WHEN\tACTOR\tACTION\tPERIOD\tDETAILS\t")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", e.Timestamp.Format(time.DateTime), e.Actor, e.Action, e.Period, e.Details)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&periodFlag, "period", "", "Only show this period (YYYY-MM)")
	cmd.Flags().StringSliceVar(&actions, "action", nil, "Only show these actions (e.g. amend,import)")
	return cmd
}
