package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/period"
	"github.com/rosa-dev/rosa/internal/schema"
)

// LineItem is a named amount within a category.
type LineItem struct {
	Label  string
	Amount decimal.Decimal
}

// Category is an ordered group of line items on one side of the ledger.
type Category struct {
	Name  string
	Side  model.Side
	Items []LineItem
}

func (c Category) clone(carryAmounts bool) Category {
	items := make([]LineItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = LineItem{Label: it.Label, Amount: decimal.Zero}
		if carryAmounts {
			items[i].Amount = it.Amount
		}
	}
	return Category{Name: c.Name, Side: c.Side, Items: items}
}

func (c *Category) item(label string) int {
	return slices.IndexFunc(c.Items, func(it LineItem) bool { return it.Label == label })
}

// Snapshot is the state of one reporting period. Its totals are derived
// from the line items and are refreshed after every mutation.
type Snapshot struct {
	period   string
	status   model.SnapshotStatus
	income   []Category
	expenses []Category

	totalIncome   decimal.Decimal
	totalExpenses decimal.Decimal
}

// Period returns the period label, e.g. "2024-03".
func (s *Snapshot) Period() string { return s.period }

// Status reports whether the snapshot has uncommitted edits.
func (s *Snapshot) Status() model.SnapshotStatus { return s.status }

// Income returns a copy of the income categories in display order.
func (s *Snapshot) Income() []Category { return cloneCategories(s.income, true) }

// Expenses returns a copy of the expense categories in display order.
func (s *Snapshot) Expenses() []Category { return cloneCategories(s.expenses, true) }

// TotalIncome is the sum of every income line item.
func (s *Snapshot) TotalIncome() decimal.Decimal { return s.totalIncome }

// TotalExpenses is the sum of every expense line item.
func (s *Snapshot) TotalExpenses() decimal.Decimal { return s.totalExpenses }

// NetTotal is TotalIncome minus TotalExpenses.
func (s *Snapshot) NetTotal() decimal.Decimal { return s.totalIncome.Sub(s.totalExpenses) }

// recompute resums the whole period. Never incremental.
func (s *Snapshot) recompute() {
	s.totalIncome = sumCategories(s.income)
	s.totalExpenses = sumCategories(s.expenses)
}

func (s *Snapshot) clone(p string, carryAmounts bool) *Snapshot {
	c := &Snapshot{
		period:   p,
		status:   model.StatusClean,
		income:   cloneCategories(s.income, carryAmounts),
		expenses: cloneCategories(s.expenses, carryAmounts),
	}
	c.recompute()
	return c
}

// categories returns pointers to every category named name, income side
// first.
func (s *Snapshot) categories(name string) []*Category {
	var found []*Category
	for _, list := range [][]Category{s.income, s.expenses} {
		for i := range list {
			if list[i].Name == name {
				found = append(found, &list[i])
			}
		}
	}
	return found
}

// lookup resolves a category/label pair to its category and item index.
func (s *Snapshot) lookup(categoryName, label string) (*Category, int, error) {
	cats := s.categories(categoryName)
	if len(cats) == 0 {
		return nil, 0, fmt.Errorf("%w: %q in %s", ErrCategoryNotFound, categoryName, s.period)
	}
	for _, c := range cats {
		if i := c.item(label); i >= 0 {
			return c, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: %q in %q (%s)", ErrItemNotFound, label, categoryName, s.period)
}

func (s *Snapshot) side(side model.Side) *[]Category {
	if side == model.SideIncome {
		return &s.income
	}
	return &s.expenses
}

func sumCategories(cats []Category) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cats {
		for _, it := range c.Items {
			total = total.Add(it.Amount)
		}
	}
	return total
}

func cloneCategories(cats []Category, carryAmounts bool) []Category {
	out := make([]Category, len(cats))
	for i, c := range cats {
		out[i] = c.clone(carryAmounts)
	}
	return out
}

// Ledger is the time series of snapshots for one beneficiary, ordered by
// period with no duplicates. A Ledger is not safe for concurrent use.
type Ledger struct {
	snapshots []*Snapshot
	changes   []model.Change
}

// Empty returns a ledger with no periods.
func Empty() *Ledger {
	return &Ledger{}
}

// New seeds a ledger from a category schema: one snapshot for the given
// period, every line item at zero.
func New(s model.CategorySchema, p string) (*Ledger, error) {
	if err := schema.Validate(s); err != nil {
		return nil, err
	}
	if err := period.Validate(p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}

	snap := &Snapshot{period: p, status: model.StatusClean}
	for _, spec := range s.Categories {
		cat := Category{Name: spec.Name, Side: spec.Side, Items: make([]LineItem, len(spec.Items))}
		for i, label := range spec.Items {
			cat.Items[i] = LineItem{Label: label, Amount: decimal.Zero}
		}
		list := snap.side(spec.Side)
		*list = append(*list, cat)
	}
	snap.recompute()

	return &Ledger{snapshots: []*Snapshot{snap}}, nil
}

// Seed starts an empty ledger at period p with every schema item at zero.
// A ledger that already has periods is left alone.
func (l *Ledger) Seed(s model.CategorySchema, p string) error {
	if len(l.snapshots) > 0 {
		return fmt.Errorf("%w: starts at %s", ErrLedgerNotEmpty, l.snapshots[0].period)
	}
	seeded, err := New(s, p)
	if err != nil {
		return err
	}
	l.snapshots = seeded.snapshots
	return nil
}

// Len returns the number of periods.
func (l *Ledger) Len() int { return len(l.snapshots) }

// Periods returns the period labels in ascending order.
func (l *Ledger) Periods() []string {
	out := make([]string, len(l.snapshots))
	for i, s := range l.snapshots {
		out[i] = s.period
	}
	return out
}

// Snapshot returns a read-only copy of the snapshot for period p.
func (l *Ledger) Snapshot(p string) (*Snapshot, error) {
	i, err := l.index(p)
	if err != nil {
		return nil, err
	}
	src := l.snapshots[i]
	c := src.clone(src.period, true)
	c.status = src.status
	return c, nil
}

// Latest returns a read-only copy of the most recent snapshot, or nil for
// an empty ledger.
func (l *Ledger) Latest() *Snapshot {
	if len(l.snapshots) == 0 {
		return nil
	}
	s, _ := l.Snapshot(l.snapshots[len(l.snapshots)-1].period)
	return s
}

// Changes returns the recorded amendments in the order they were made.
func (l *Ledger) Changes() []model.Change {
	return slices.Clone(l.changes)
}

func (l *Ledger) index(p string) (int, error) {
	i := slices.IndexFunc(l.snapshots, func(s *Snapshot) bool { return s.period == p })
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrPeriodNotFound, p)
	}
	return i, nil
}

func (l *Ledger) latest() (*Snapshot, error) {
	if len(l.snapshots) == 0 {
		return nil, fmt.Errorf("%w: ledger has no periods", ErrPeriodNotFound)
	}
	return l.snapshots[len(l.snapshots)-1], nil
}

// sealed reports whether a later snapshot exists after index i.
func (l *Ledger) sealed(i int) bool {
	return i < len(l.snapshots)-1
}
