package beneficiary

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/rosa-dev/rosa/internal/model"
)

const (
	numFields    = 4
	colID        = 0
	colFirstName = 1
	colLastName  = 2
	colCreatedAt = 3
)

// ReadBeneficiaries reads beneficiaries.csv.
func ReadBeneficiaries(r io.Reader) ([]model.Beneficiary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading beneficiaries CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var list []model.Beneficiary
	for i, rec := range records[1:] {
		b, err := UnmarshalBeneficiary(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		list = append(list, b)
	}
	return list, nil
}

// WriteBeneficiaries writes beneficiaries.csv.
func WriteBeneficiaries(w io.Writer, list []model.Beneficiary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"id", "first_name", "last_name", "created_at"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, b := range list {
		if err := cw.Write(MarshalBeneficiary(b)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalBeneficiary converts a Beneficiary to a CSV row.
func MarshalBeneficiary(b model.Beneficiary) []string {
	row := make([]string, numFields)
	row[colID] = b.ID
	row[colFirstName] = b.FirstName
	row[colLastName] = b.LastName
	row[colCreatedAt] = b.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalBeneficiary converts a CSV row to a Beneficiary.
func UnmarshalBeneficiary(record []string) (model.Beneficiary, error) {
	if len(record) != numFields {
		return model.Beneficiary{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Beneficiary{}, fmt.Errorf("missing id")
	}

	createdAt, err := time.Parse(time.RFC3339, record[colCreatedAt])
	if err != nil {
		return model.Beneficiary{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	return model.Beneficiary{
		ID:        record[colID],
		FirstName: record[colFirstName],
		LastName:  record[colLastName],
		CreatedAt: createdAt,
	}, nil
}
