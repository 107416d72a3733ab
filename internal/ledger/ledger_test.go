package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/schema"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func rsaSchema() model.CategorySchema {
	return model.CategorySchema{Categories: []model.CategorySpec{
		{Name: "RSA", Side: model.SideIncome, Items: []string{"RSA"}},
		{Name: "Logement", Side: model.SideExpense, Items: []string{"Loyer"}},
	}}
}

// rsaLedger is the ledger of the RSA/Loyer example: 598.54 in, 450 out.
func rsaLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(rsaSchema(), "2024-03")
	require.NoError(t, err)
	require.NoError(t, l.SetAmount("2024-03", "RSA", "RSA", dec("598.54")))
	require.NoError(t, l.SetAmount("2024-03", "Logement", "Loyer", dec("450")))
	return l
}

// checkInvariant resums every snapshot independently of the ledger code.
func checkInvariant(t *testing.T, l *Ledger) {
	t.Helper()
	for _, p := range l.Periods() {
		s, err := l.Snapshot(p)
		require.NoError(t, err)
		want := decimal.Zero
		for _, c := range s.Income() {
			for _, it := range c.Items {
				want = want.Add(it.Amount)
			}
		}
		for _, c := range s.Expenses() {
			for _, it := range c.Items {
				want = want.Sub(it.Amount)
			}
		}
		assert.True(t, want.Equal(s.NetTotal()), "period %s: net %s, resummed %s", p, s.NetTotal(), want)
	}
}

func TestNew_ZeroedFromSchema(t *testing.T) {
	l, err := New(schema.Default(), "2024-03")
	require.NoError(t, err)

	require.Equal(t, []string{"2024-03"}, l.Periods())
	s := l.Latest()
	require.NotNil(t, s)
	assert.Equal(t, model.StatusClean, s.Status())
	assertDec(t, "0", s.NetTotal())

	require.Len(t, s.Income(), 3)
	require.Len(t, s.Expenses(), 4)
	assert.Equal(t, schema.CategoryPrestations, s.Income()[0].Name)
	assert.Equal(t, "RSA/Prime d'activité", s.Income()[0].Items[0].Label)
	for _, c := range append(s.Income(), s.Expenses()...) {
		for _, it := range c.Items {
			assert.True(t, it.Amount.IsZero(), "%s/%s should start at zero", c.Name, it.Label)
		}
	}
}

func TestNew_InvalidSchema(t *testing.T) {
	s := model.CategorySchema{Categories: []model.CategorySpec{
		{Name: "Revenus", Side: model.SideIncome, Items: []string{"Salaire", "Salaire"}},
	}}
	_, err := New(s, "2024-03")
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestNew_InvalidPeriod(t *testing.T) {
	_, err := New(rsaSchema(), "Mar")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestEmpty(t *testing.T) {
	l := Empty()
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Latest())
	assert.Empty(t, l.NetTotalSeries())

	err := l.AddItem("RSA", "RSA", decimal.Zero)
	assert.ErrorIs(t, err, ErrPeriodNotFound)

	require.NoError(t, l.AppendPeriod("2024-01", false))
	assert.Equal(t, []string{"2024-01"}, l.Periods())
	assertDec(t, "0", l.Latest().NetTotal())
}

func TestSeed(t *testing.T) {
	l := Empty()
	require.NoError(t, l.Seed(rsaSchema(), "2024-01"))
	assert.Equal(t, []string{"2024-01"}, l.Periods())

	require.NoError(t, l.SetAmount("2024-01", "Logement", "Loyer", dec("450")))
	require.NoError(t, l.AddItem("RSA", "Prime", dec("20")))
	assertDec(t, "-430", l.Latest().NetTotal())
	checkInvariant(t, l)

	err := l.Seed(rsaSchema(), "2024-02")
	assert.ErrorIs(t, err, ErrLedgerNotEmpty)
	assert.Equal(t, []string{"2024-01"}, l.Periods())
}

func TestSeed_InvalidInputLeavesLedgerEmpty(t *testing.T) {
	l := Empty()
	assert.ErrorIs(t, l.Seed(rsaSchema(), "2024-13"), ErrInvalidPeriod)

	bad := rsaSchema()
	bad.Categories[0].Items = []string{"RSA", "RSA"}
	assert.ErrorIs(t, l.Seed(bad, "2024-01"), ErrInvalidSchema)
	assert.Equal(t, 0, l.Len())
}

func TestScenario_NetTotal(t *testing.T) {
	l := rsaLedger(t)
	assertDec(t, "148.54", l.Latest().NetTotal())
	assertDec(t, "598.54", l.Latest().TotalIncome())
	assertDec(t, "450", l.Latest().TotalExpenses())
	checkInvariant(t, l)
}

func TestScenario_SetToZero(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.SetAmount("2024-03", "RSA", "RSA", decimal.Zero))
	assertDec(t, "-450", l.Latest().NetTotal())
	checkInvariant(t, l)
}

func TestScenario_NonMonotonicAppend(t *testing.T) {
	l := rsaLedger(t)

	err := l.AppendPeriod("2024-02", false)
	assert.ErrorIs(t, err, ErrNonMonotonicPeriod)

	err = l.AppendPeriod("2024-03", false)
	assert.ErrorIs(t, err, ErrNonMonotonicPeriod)

	assert.Equal(t, []string{"2024-03"}, l.Periods())
}

func TestScenario_CarryForward(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.AppendPeriod("2024-04", true))

	series := l.NetTotalSeries()
	require.Len(t, series, 2)
	assert.Equal(t, "2024-03", series[0].Period)
	assert.Equal(t, "2024-04", series[1].Period)
	assertDec(t, "148.54", series[0].Net)
	assert.True(t, series[0].Net.Equal(series[1].Net))
	checkInvariant(t, l)
}

func TestScenario_UnknownItem(t *testing.T) {
	l := rsaLedger(t)
	before := l.Latest().NetTotal()

	err := l.SetAmount("2024-03", "RSA", "Salaire", dec("100"))
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.True(t, before.Equal(l.Latest().NetTotal()))
}

func TestSetAmount_Errors(t *testing.T) {
	l := rsaLedger(t)
	before := l.Breakdown()

	tests := []struct {
		name     string
		period   string
		category string
		label    string
		amount   decimal.Decimal
		want     error
	}{
		{"unknown period", "2024-04", "RSA", "RSA", dec("1"), ErrPeriodNotFound},
		{"unknown category", "2024-03", "Santé", "RSA", dec("1"), ErrCategoryNotFound},
		{"unknown item", "2024-03", "Logement", "Eau", dec("1"), ErrItemNotFound},
		{"sub-cent amount", "2024-03", "RSA", "RSA", dec("1.005"), ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.SetAmount(tt.period, tt.category, tt.label, tt.amount)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, l.Breakdown(), "failed edit must not change the ledger")
		})
	}
}

func TestSetAmount_Idempotent(t *testing.T) {
	once := rsaLedger(t)
	require.NoError(t, once.SetAmount("2024-03", "Logement", "Loyer", dec("475.10")))

	twice := rsaLedger(t)
	require.NoError(t, twice.SetAmount("2024-03", "Logement", "Loyer", dec("475.10")))
	require.NoError(t, twice.SetAmount("2024-03", "Logement", "Loyer", dec("475.10")))

	assert.Equal(t, once, twice)
}

func TestSetAmount_NoDrift(t *testing.T) {
	l, err := New(rsaSchema(), "2024-03")
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.NoError(t, l.SetAmount("2024-03", "RSA", "RSA", dec("0.10")))
	}
	assertDec(t, "0.10", l.Latest().NetTotal())
}

func TestStateMachine(t *testing.T) {
	l, err := New(rsaSchema(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClean, l.Latest().Status())

	require.NoError(t, l.SetAmount("2024-03", "RSA", "RSA", dec("598.54")))
	assert.Equal(t, model.StatusDirty, l.Latest().Status())

	net, err := l.Commit("2024-03")
	require.NoError(t, err)
	assertDec(t, "598.54", net)
	assert.Equal(t, model.StatusClean, l.Latest().Status())

	_, err = l.Commit("2023-01")
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestAppendPeriod_CommitsPrevious(t *testing.T) {
	l := rsaLedger(t)
	require.Equal(t, model.StatusDirty, l.Latest().Status())

	require.NoError(t, l.AppendPeriod("2024-04", false))

	prev, err := l.Snapshot("2024-03")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClean, prev.Status())
	assert.Equal(t, model.StatusClean, l.Latest().Status())
}

func TestAppendPeriod_ResetAmounts(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.AppendPeriod("2024-05", false))

	s := l.Latest()
	assert.Equal(t, "2024-05", s.Period())
	assertDec(t, "0", s.NetTotal())
	require.Len(t, s.Income(), 1)
	assert.Equal(t, "RSA", s.Income()[0].Items[0].Label)

	prev, err := l.Snapshot("2024-03")
	require.NoError(t, err)
	assertDec(t, "148.54", prev.NetTotal())
}

func TestAppendPeriod_InvalidPeriod(t *testing.T) {
	l := rsaLedger(t)
	assert.ErrorIs(t, l.AppendPeriod("April", false), ErrInvalidPeriod)
}

func TestSealedPeriod_RequiresAmend(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.AppendPeriod("2024-04", true))

	err := l.SetAmount("2024-03", "RSA", "RSA", dec("600"))
	require.ErrorIs(t, err, ErrRetroactiveEdit)

	at := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	change, err := l.Amend("2024-03", "RSA", "RSA", dec("600"), "revalorisation RSA", at)
	require.NoError(t, err)
	assertDec(t, "598.54", change.Old)
	assertDec(t, "600", change.New)
	assert.Equal(t, "revalorisation RSA", change.Reason)

	prev, err := l.Snapshot("2024-03")
	require.NoError(t, err)
	assertDec(t, "150", prev.NetTotal())
	assert.Equal(t, model.StatusClean, prev.Status())

	changes := l.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, "2024-03", changes[0].Period)
	assert.Equal(t, at, changes[0].At)
	checkInvariant(t, l)
}

func TestAmend_Errors(t *testing.T) {
	l := rsaLedger(t)
	_, err := l.Amend("2024-03", "RSA", "Nope", dec("1"), "typo", time.Now())
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = l.Amend("2024-03", "RSA", "RSA", dec("0.001"), "typo", time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, l.Changes())
}

func TestAddItem(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.AppendPeriod("2024-04", true))

	require.NoError(t, l.AddItem("Logement", "Eau", dec("30")))
	assertDec(t, "118.54", l.Latest().NetTotal())

	labels := func(s *Snapshot) []string {
		var out []string
		for _, it := range s.Expenses()[0].Items {
			out = append(out, it.Label)
		}
		return out
	}
	assert.Equal(t, []string{"Loyer", "Eau"}, labels(l.Latest()))

	prev, err := l.Snapshot("2024-03")
	require.NoError(t, err)
	assert.Equal(t, []string{"Loyer"}, labels(prev), "past periods keep their item set")
	checkInvariant(t, l)
}

func TestAddItem_DuplicateLabel(t *testing.T) {
	l := rsaLedger(t)
	before := l.Breakdown()

	err := l.AddItem("Logement", "Loyer", dec("10"))
	assert.ErrorIs(t, err, ErrDuplicateLabel)
	assert.Equal(t, before, l.Breakdown())
}

func TestAddItem_Errors(t *testing.T) {
	l := rsaLedger(t)
	assert.ErrorIs(t, l.AddItem("Transport", "Carburant", decimal.Zero), ErrCategoryNotFound)
	assert.ErrorIs(t, l.AddItem("Logement", "Eau", dec("0.123")), ErrInvalidAmount)
}

func TestRemoveItem(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.AppendPeriod("2024-04", true))

	require.NoError(t, l.RemoveItem("Logement", "Loyer"))
	assertDec(t, "598.54", l.Latest().NetTotal())
	assert.Empty(t, l.Latest().Expenses()[0].Items)

	prev, err := l.Snapshot("2024-03")
	require.NoError(t, err)
	assert.Len(t, prev.Expenses()[0].Items, 1)

	assert.ErrorIs(t, l.RemoveItem("Logement", "Loyer"), ErrItemNotFound)
	assert.ErrorIs(t, l.RemoveItem("Santé", "CSS"), ErrCategoryNotFound)
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	l := rsaLedger(t)
	s, err := l.Snapshot("2024-03")
	require.NoError(t, err)

	inc := s.Income()
	inc[0].Items[0].Amount = dec("1000000")

	assertDec(t, "148.54", l.Latest().NetTotal())
	_, err = l.Snapshot("1999-01")
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestSameCategoryNameOnBothSides(t *testing.T) {
	s := model.CategorySchema{Categories: []model.CategorySpec{
		{Name: "Divers", Side: model.SideIncome, Items: []string{"Dons"}},
		{Name: "Divers", Side: model.SideExpense, Items: []string{"Frais"}},
	}}
	l, err := New(s, "2024-03")
	require.NoError(t, err)

	require.NoError(t, l.SetAmount("2024-03", "Divers", "Dons", dec("50")))
	require.NoError(t, l.SetAmount("2024-03", "Divers", "Frais", dec("20")))
	assertDec(t, "30", l.Latest().NetTotal())
}
