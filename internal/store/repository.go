package store

import (
	"context"
	"errors"

	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"
)

// ErrNotFound is returned when no ledger exists for a beneficiary.
var ErrNotFound = errors.New("ledger not found")

// Repository persists one ledger per beneficiary. The ledger package does
// not depend on it.
type Repository interface {
	Load(ctx context.Context, beneficiaryID string) (*ledger.Ledger, error)
	Save(ctx context.Context, beneficiaryID string, l *ledger.Ledger) error
	Delete(ctx context.Context, beneficiaryID string) error

	// AddInteraction appends to the interactions of an existing ledger.
	AddInteraction(ctx context.Context, in model.Interaction) error
	// Interactions lists a beneficiary's interactions, newest first.
	Interactions(ctx context.Context, beneficiaryID string) ([]model.Interaction, error)
}
