package model

import "fmt"

// Side tells which half of the ledger a category belongs to.
type Side string

const (
	SideIncome  Side = "income"
	SideExpense Side = "expense"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideIncome || s == SideExpense
}

// ParseSide converts "income"/"expense" into a Side.
func ParseSide(s string) (Side, error) {
	side := Side(s)
	if !side.Valid() {
		return "", fmt.Errorf("unknown side %q", s)
	}
	return side, nil
}

// CategorySpec is one entry of the category catalog: a named group of
// line-item labels on one side of the ledger.
type CategorySpec struct {
	Name  string   `yaml:"name" validate:"required"`
	Side  Side     `yaml:"side" validate:"required,oneof=income expense"`
	Items []string `yaml:"items" validate:"dive,required"`
}

// CategorySchema is the ordered catalog used to seed new ledgers.
type CategorySchema struct {
	Version    int            `yaml:"version"`
	Categories []CategorySpec `yaml:"categories" validate:"dive"`
}

// BySide returns the specs of one side, in catalog order.
func (s CategorySchema) BySide(side Side) []CategorySpec {
	var result []CategorySpec
	for _, c := range s.Categories {
		if c.Side == side {
			result = append(result, c)
		}
	}
	return result
}
