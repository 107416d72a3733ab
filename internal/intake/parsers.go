package intake

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rosa-dev/rosa/internal/ledger"
)

// Format names.
const (
	FormatForm        = "form"
	FormatSpreadsheet = "spreadsheet"
)

const (
	numFields   = 3
	colCategory = 0
	colLabel    = 1
	colAmount   = 2
)

// FormParser reads the comma separated intake form:
//
//	category,label,amount
//	Logement,Loyer,650.00
type FormParser struct{}

// Format returns the parser name.
func (p *FormParser) Format() string { return FormatForm }

// Parse reads a form CSV. The first row is a header.
func (p *FormParser) Parse(r io.Reader) ([]Entry, error) {
	return parseRecords(r, ',')
}

// SpreadsheetParser reads semicolon separated exports from French
// spreadsheets, where amounts look like "1 298,54 €".
type SpreadsheetParser struct{}

// Format returns the parser name.
func (p *SpreadsheetParser) Format() string { return FormatSpreadsheet }

// Parse reads a spreadsheet CSV. The first row is a header.
func (p *SpreadsheetParser) Parse(r io.Reader) ([]Entry, error) {
	return parseRecords(r, ';')
}

func parseRecords(r io.Reader, comma rune) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading intake CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRow(rec []string) (Entry, error) {
	category := strings.TrimSpace(rec[colCategory])
	label := strings.TrimSpace(rec[colLabel])
	if category == "" || label == "" {
		return Entry{}, fmt.Errorf("category and label are required")
	}

	amount, err := ledger.ParseAmount(rec[colAmount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}

	return Entry{Category: category, Label: label, Amount: amount}, nil
}
