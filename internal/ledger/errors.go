package ledger

import (
	"errors"

	"github.com/rosa-dev/rosa/internal/schema"
)

// Errors returned by ledger operations. They are always wrapped with the
// offending identifier; match them with errors.Is.
var (
	ErrInvalidSchema      = schema.ErrInvalidSchema
	ErrPeriodNotFound     = errors.New("period not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrItemNotFound       = errors.New("line item not found")
	ErrDuplicateLabel     = errors.New("duplicate line item label")
	ErrNonMonotonicPeriod = errors.New("period does not follow the latest period")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrRetroactiveEdit    = errors.New("period is sealed by a later period; amend it with a reason")
	ErrLedgerNotEmpty     = errors.New("ledger already has periods")
)
