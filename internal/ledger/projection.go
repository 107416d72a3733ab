package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/period"
)

// PeriodTotal is one point of the net total series.
type PeriodTotal struct {
	Period   string
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// NetTotalSeries returns one entry per period in ascending order.
func (l *Ledger) NetTotalSeries() []PeriodTotal {
	out := make([]PeriodTotal, len(l.snapshots))
	for i, s := range l.snapshots {
		out[i] = PeriodTotal{
			Period:   s.period,
			Income:   s.totalIncome,
			Expenses: s.totalExpenses,
			Net:      s.NetTotal(),
		}
	}
	return out
}

// Breakdown flattens the ledger into one row per line item, in period then
// display order. Categories without items and periods without categories
// still produce a declaring row, so FromRows can rebuild the exact
// structure.
func (l *Ledger) Breakdown() []model.LedgerRow {
	var rows []model.LedgerRow
	for _, s := range l.snapshots {
		cats := append(s.Income(), s.Expenses()...)
		if len(cats) == 0 {
			rows = append(rows, model.LedgerRow{Period: s.period, Status: s.status})
			continue
		}
		for _, c := range cats {
			if len(c.Items) == 0 {
				rows = append(rows, model.LedgerRow{
					Period:   s.period,
					Status:   s.status,
					Side:     c.Side,
					Category: c.Name,
					Amount:   decimal.Zero,
				})
				continue
			}
			for _, it := range c.Items {
				rows = append(rows, model.LedgerRow{
					Period:   s.period,
					Status:   s.status,
					Side:     c.Side,
					Category: c.Name,
					Label:    it.Label,
					Amount:   it.Amount,
				})
			}
		}
	}
	return rows
}

// FromRows rebuilds a ledger from rows produced by Breakdown. Rows of one
// period must be contiguous and periods ascending.
func FromRows(rows []model.LedgerRow, changes []model.Change) (*Ledger, error) {
	l := &Ledger{changes: append([]model.Change(nil), changes...)}

	var cur *Snapshot
	for i, row := range rows {
		if cur == nil || row.Period != cur.period {
			if err := period.Validate(row.Period); err != nil {
				return nil, fmt.Errorf("row %d: %w: %w", i+1, ErrInvalidPeriod, err)
			}
			if cur != nil {
				cmp, err := period.Compare(row.Period, cur.period)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i+1, err)
				}
				if cmp <= 0 {
					return nil, fmt.Errorf("row %d: %w: %s after %s", i+1, ErrNonMonotonicPeriod, row.Period, cur.period)
				}
			}
			cur = &Snapshot{period: row.Period, status: model.StatusClean}
			l.snapshots = append(l.snapshots, cur)
		}
		if row.Status == model.StatusDirty {
			cur.status = model.StatusDirty
		}
		if row.Category == "" {
			continue
		}

		if !row.Side.Valid() {
			return nil, fmt.Errorf("row %d: unknown side %q", i+1, row.Side)
		}
		list := cur.side(row.Side)
		ci := -1
		for k := range *list {
			if (*list)[k].Name == row.Category {
				ci = k
			}
		}
		if ci < 0 {
			*list = append(*list, Category{Name: row.Category, Side: row.Side, Items: []LineItem{}})
			ci = len(*list) - 1
		}
		if row.Label == "" {
			continue
		}

		cat := &(*list)[ci]
		if cat.item(row.Label) >= 0 {
			return nil, fmt.Errorf("row %d: %w: %q in %q", i+1, ErrDuplicateLabel, row.Label, row.Category)
		}
		if err := checkAmount(row.Amount); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		cat.Items = append(cat.Items, LineItem{Label: row.Label, Amount: row.Amount})
	}

	for _, s := range l.snapshots {
		s.recompute()
	}
	return l, nil
}
