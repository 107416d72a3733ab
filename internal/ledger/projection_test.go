package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/schema"
)

func TestNetTotalSeries_MatchesSnapshots(t *testing.T) {
	l := rsaLedger(t)
	require.NoError(t, l.AppendPeriod("2024-04", true))
	require.NoError(t, l.SetAmount("2024-04", "Logement", "Loyer", dec("500")))
	require.NoError(t, l.AppendPeriod("2024-06", false))

	series := l.NetTotalSeries()
	require.Len(t, series, l.Len())
	for i, p := range l.Periods() {
		s, err := l.Snapshot(p)
		require.NoError(t, err)
		assert.Equal(t, p, series[i].Period)
		assert.True(t, s.NetTotal().Equal(series[i].Net))
		assert.True(t, series[i].Income.Sub(series[i].Expenses).Equal(series[i].Net))
	}
	assertDec(t, "148.54", series[0].Net)
	assertDec(t, "98.54", series[1].Net)
	assertDec(t, "0", series[2].Net)

	// Restartable: a second call sees the same values.
	assert.Equal(t, series, l.NetTotalSeries())
}

func TestBreakdown_Order(t *testing.T) {
	l := rsaLedger(t)
	rows := l.Breakdown()
	require.Len(t, rows, 2)

	assert.Equal(t, model.SideIncome, rows[0].Side)
	assert.Equal(t, "RSA", rows[0].Category)
	assertDec(t, "598.54", rows[0].Amount)
	assert.Equal(t, model.SideExpense, rows[1].Side)
	assert.Equal(t, "Loyer", rows[1].Label)
	assert.Equal(t, model.StatusDirty, rows[1].Status)
}

func TestFromRows_RoundTrip(t *testing.T) {
	l, err := New(schema.Default(), "2024-01")
	require.NoError(t, err)
	require.NoError(t, l.SetAmount("2024-01", schema.CategoryRevenus, "Salaire", dec("800")))
	require.NoError(t, l.AppendPeriod("2024-02", true))
	require.NoError(t, l.RemoveItem(schema.CategoryTransport, "Carburant"))
	require.NoError(t, l.RemoveItem(schema.CategoryTransport, "Transport en commun"))
	_, err = l.Amend("2024-01", schema.CategoryRevenus, "Salaire", dec("850"), "fiche de paie", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, l.SetAmount("2024-02", schema.CategoryLogement, "Eau", dec("25.5")))

	got, err := FromRows(l.Breakdown(), l.Changes())
	require.NoError(t, err)

	assert.Equal(t, l.Periods(), got.Periods())
	assert.Equal(t, l.Breakdown(), got.Breakdown())
	assert.Equal(t, l.Changes(), got.Changes())
	assert.Equal(t, model.StatusDirty, got.Latest().Status())

	// The emptied Transport category survives.
	var names []string
	for _, c := range got.Latest().Expenses() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, schema.CategoryTransport)
	checkInvariant(t, got)
}

func TestFromRows_EmptyPeriod(t *testing.T) {
	l := Empty()
	require.NoError(t, l.AppendPeriod("2024-01", false))

	got, err := FromRows(l.Breakdown(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01"}, got.Periods())
}

func TestFromRows_Rejects(t *testing.T) {
	tests := []struct {
		name string
		rows []model.LedgerRow
		want error
	}{
		{
			name: "periods out of order",
			rows: []model.LedgerRow{{Period: "2024-03"}, {Period: "2024-02"}},
			want: ErrNonMonotonicPeriod,
		},
		{
			name: "invalid period",
			rows: []model.LedgerRow{{Period: "March"}},
			want: ErrInvalidPeriod,
		},
		{
			name: "duplicate label",
			rows: []model.LedgerRow{
				{Period: "2024-03", Side: model.SideIncome, Category: "RSA", Label: "RSA", Amount: dec("1")},
				{Period: "2024-03", Side: model.SideIncome, Category: "RSA", Label: "RSA", Amount: dec("2")},
			},
			want: ErrDuplicateLabel,
		},
		{
			name: "sub-cent amount",
			rows: []model.LedgerRow{
				{Period: "2024-03", Side: model.SideIncome, Category: "RSA", Label: "RSA", Amount: dec("1.001")},
			},
			want: ErrInvalidAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRows(tt.rows, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromRows_UnknownSide(t *testing.T) {
	_, err := FromRows([]model.LedgerRow{{Period: "2024-03", Side: "asset", Category: "X"}}, nil)
	assert.Error(t, err)
}
