package model

import "time"

// Beneficiary is a person followed by the association. Each beneficiary owns
// exactly one ledger, stored under the same ID.
type Beneficiary struct {
	ID        string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// FullName returns "First Last".
func (b Beneficiary) FullName() string {
	switch {
	case b.FirstName == "":
		return b.LastName
	case b.LastName == "":
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}
