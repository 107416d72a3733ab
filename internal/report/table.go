package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"
)

// SortKey selects a presentation order for breakdown rows.
type SortKey string

const (
	SortNone   SortKey = ""
	SortAmount SortKey = "amount"
	SortLabel  SortKey = "label"
)

// ParseSortKey accepts "", "amount" or "label".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortNone, SortAmount, SortLabel:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want amount or label)", s)
}

// SortRows returns a sorted copy of rows; the input is left untouched.
// Amount sorts descending within each period and side, label ascending.
func SortRows(rows []model.LedgerRow, key SortKey) []model.LedgerRow {
	out := slices.Clone(rows)
	if key == SortNone {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.LedgerRow) int {
		if c := strings.Compare(a.Period, b.Period); c != 0 {
			return c
		}
		if a.Side != b.Side {
			if a.Side == model.SideIncome {
				return -1
			}
			return 1
		}
		if key == SortAmount {
			return b.Amount.Cmp(a.Amount)
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// WriteSeries prints the net total series as a table.
func WriteSeries(w io.Writer, series []ledger.PeriodTotal, f *Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERIOD\tINCOME\tEXPENSES\tNET\t")
	for _, pt := range series {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", pt.Period, f.Amount(pt.Income), f.Amount(pt.Expenses), f.Amount(pt.Net))
	}
	return tw.Flush()
}

// WriteBreakdown prints line items (skipping category declarations), then
// the totals of each period.
func WriteBreakdown(w io.Writer, rows []model.LedgerRow, series []ledger.PeriodTotal, f *Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tSIDE\tCATEGORY\tLABEL\tAMOUNT")
	for _, row := range rows {
		if row.Label == "" {
			continue
		}
		amount := row.Amount
		if row.Side == model.SideExpense {
			amount = amount.Neg()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Period, row.Side, row.Category, row.Label, f.Amount(amount))
	}
	for _, pt := range series {
		fmt.Fprintf(tw, "%s\t\t\tNET\t%s\n", pt.Period, f.Amount(pt.Net))
	}
	return tw.Flush()
}
