package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rosa-dev/rosa/internal/model"
)

// ErrInvalidSchema is matched by every *Error returned from Validate.
var ErrInvalidSchema = errors.New("invalid category schema")

var validate = validator.New()

// Problem is a single defect found in a schema.
type Problem struct {
	Category string
	Label    string
	Reason   string
}

func (p Problem) String() string {
	if p.Label != "" {
		return fmt.Sprintf("[%s/%s] %s", p.Category, p.Label, p.Reason)
	}
	return fmt.Sprintf("[%s] %s", p.Category, p.Reason)
}

// Error lists every problem found in a schema.
type Error struct {
	Problems []Problem
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSchema, strings.Join(msgs, "; "))
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidSchema
}

// Validate checks field constraints and name uniqueness: category names
// unique within a side, item labels unique within a category.
func Validate(s model.CategorySchema) error {
	var problems []Problem

	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating schema: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, Problem{
				Category: fe.Namespace(),
				Reason:   fmt.Sprintf("failed %q constraint", fe.Tag()),
			})
		}
	}

	seen := map[model.Side]map[string]bool{
		model.SideIncome:  {},
		model.SideExpense: {},
	}
	for _, c := range s.Categories {
		names, ok := seen[c.Side]
		if !ok {
			continue
		}
		if names[c.Name] {
			problems = append(problems, Problem{
				Category: c.Name,
				Reason:   fmt.Sprintf("duplicate %s category", c.Side),
			})
		}
		names[c.Name] = true

		labels := make(map[string]bool, len(c.Items))
		for _, label := range c.Items {
			if labels[label] {
				problems = append(problems, Problem{
					Category: c.Name,
					Label:    label,
					Reason:   "duplicate item label",
				})
			}
			labels[label] = true
		}
	}

	if len(problems) > 0 {
		return &Error{Problems: problems}
	}
	return nil
}
