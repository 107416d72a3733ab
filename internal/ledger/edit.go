package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/period"
)

// SetAmount replaces one line item's amount in period p and resums the
// period. The snapshot becomes dirty until Commit. Periods sealed by a
// later period cannot be set directly; use Amend.
func (l *Ledger) SetAmount(p, categoryName, label string, amount decimal.Decimal) error {
	i, err := l.index(p)
	if err != nil {
		return err
	}
	snap := l.snapshots[i]
	cat, j, err := snap.lookup(categoryName, label)
	if err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if l.sealed(i) {
		return fmt.Errorf("%w: %s", ErrRetroactiveEdit, p)
	}

	cat.Items[j].Amount = amount
	snap.recompute()
	snap.status = model.StatusDirty
	return nil
}

// Amend changes a line item in any period, including sealed ones, and
// records the change with its reason. The snapshot stays committed.
func (l *Ledger) Amend(p, categoryName, label string, amount decimal.Decimal, reason string, at time.Time) (model.Change, error) {
	i, err := l.index(p)
	if err != nil {
		return model.Change{}, err
	}
	snap := l.snapshots[i]
	cat, j, err := snap.lookup(categoryName, label)
	if err != nil {
		return model.Change{}, err
	}
	if err := checkAmount(amount); err != nil {
		return model.Change{}, err
	}

	change := model.Change{
		At:       at,
		Period:   p,
		Category: categoryName,
		Label:    label,
		Old:      cat.Items[j].Amount,
		New:      amount,
		Reason:   reason,
	}
	cat.Items[j].Amount = amount
	snap.recompute()
	l.changes = append(l.changes, change)
	return change, nil
}

// Commit recomputes period p and marks it clean. It returns the committed
// net total.
func (l *Ledger) Commit(p string) (decimal.Decimal, error) {
	i, err := l.index(p)
	if err != nil {
		return decimal.Zero, err
	}
	snap := l.snapshots[i]
	snap.recompute()
	snap.status = model.StatusClean
	return snap.NetTotal(), nil
}

// AddItem appends a line item to a category of the latest period. Earlier
// periods keep their item set. When the name exists on both sides the
// income category is used.
func (l *Ledger) AddItem(categoryName, label string, amount decimal.Decimal) error {
	snap, err := l.latest()
	if err != nil {
		return err
	}
	cats := snap.categories(categoryName)
	if len(cats) == 0 {
		return fmt.Errorf("%w: %q in %s", ErrCategoryNotFound, categoryName, snap.period)
	}
	cat := cats[0]
	if cat.item(label) >= 0 {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateLabel, label, categoryName)
	}
	if err := checkAmount(amount); err != nil {
		return err
	}

	cat.Items = append(cat.Items, LineItem{Label: label, Amount: amount})
	snap.recompute()
	if !amount.IsZero() {
		snap.status = model.StatusDirty
	}
	return nil
}

// RemoveItem drops a line item from the latest period.
func (l *Ledger) RemoveItem(categoryName, label string) error {
	snap, err := l.latest()
	if err != nil {
		return err
	}
	cat, j, err := snap.lookup(categoryName, label)
	if err != nil {
		return err
	}

	removed := cat.Items[j]
	cat.Items = slices.Delete(cat.Items, j, j+1)
	snap.recompute()
	if !removed.Amount.IsZero() {
		snap.status = model.StatusDirty
	}
	return nil
}

// AppendPeriod adds a snapshot for p, which must sort strictly after the
// latest period. The category and item structure of the latest snapshot is
// copied; amounts are carried over only when carryForward is set. Pending
// edits of the previous latest period are committed, since it becomes
// sealed.
func (l *Ledger) AppendPeriod(p string, carryForward bool) error {
	if err := period.Validate(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}

	if len(l.snapshots) == 0 {
		l.snapshots = append(l.snapshots, &Snapshot{period: p, status: model.StatusClean})
		return nil
	}

	prev := l.snapshots[len(l.snapshots)-1]
	cmp, err := period.Compare(p, prev.period)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}
	if cmp <= 0 {
		return fmt.Errorf("%w: %s is not after %s", ErrNonMonotonicPeriod, p, prev.period)
	}

	prev.recompute()
	prev.status = model.StatusClean
	l.snapshots = append(l.snapshots, prev.clone(p, carryForward))
	return nil
}
