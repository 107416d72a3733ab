package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotStatus is the editing state of a period snapshot.
type SnapshotStatus string

const (
	StatusClean SnapshotStatus = "clean"
	StatusDirty SnapshotStatus = "dirty"
)

// LedgerRow is the flat form of one line item in one period. It is what the
// stores persist and what the presentation layer renders.
//
// A row with an empty Label only declares its category; a row with an empty
// Category only declares its period.
type LedgerRow struct {
	Period   string
	Status   SnapshotStatus
	Side     Side
	Category string
	Label    string
	Amount   decimal.Decimal
}

// Change records a retroactive edit of a sealed period.
type Change struct {
	At       time.Time
	Period   string
	Category string
	Label    string
	Old      decimal.Decimal
	New      decimal.Decimal
	Reason   string
}
