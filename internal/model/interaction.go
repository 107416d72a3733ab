package model

import (
	"fmt"
	"strings"
	"time"
)

// InteractionType is how the association met or contacted a beneficiary.
type InteractionType string

const (
	InteractionAssociation InteractionType = "ASSOCIATION"
	InteractionExternal    InteractionType = "EXTERNAL"
	InteractionPhone       InteractionType = "PHONE"
	InteractionHomeVisit   InteractionType = "HOME_VISIT"
	InteractionEmail       InteractionType = "EMAIL"
	InteractionOther       InteractionType = "OTHER"
)

// InteractionTypes lists the known types in display order.
var InteractionTypes = []InteractionType{
	InteractionAssociation,
	InteractionExternal,
	InteractionPhone,
	InteractionHomeVisit,
	InteractionEmail,
	InteractionOther,
}

// ParseInteractionType accepts a type name in any case, with '-' for '_'.
func ParseInteractionType(s string) (InteractionType, error) {
	t := InteractionType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, known := range InteractionTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown interaction type %q", s)
}

// Interaction is a meeting, call or visit with a beneficiary. Period
// optionally ties it to the ledger month that was reviewed.
type Interaction struct {
	ID               string
	Beneficiary      string          `validate:"required"`
	Type             InteractionType `validate:"required,oneof=ASSOCIATION EXTERNAL PHONE HOME_VISIT EMAIL OTHER"`
	Title            string          `validate:"required,max=200"`
	Description      string
	Period           string
	ChangesMade      string
	FollowUpRequired bool
	FollowUpDate     time.Time
	FollowUpNotes    string
	Actor            string
	At               time.Time
}

const summaryLen = 100

// Summary returns the description cut to fit a list column.
func (in Interaction) Summary() string {
	r := []rune(in.Description)
	if len(r) <= summaryLen {
		return in.Description
	}
	return string(r[:summaryLen-3]) + "..."
}
