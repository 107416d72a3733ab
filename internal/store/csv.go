package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rosa-dev/rosa/internal/model"
)

// Header is the CSV header for ledger.csv.
const Header = "period,status,side,category,label,amount"

// ChangeHeader is the CSV header for changes.csv.
const ChangeHeader = "at,period,category,label,old,new,reason"

const (
	numFields   = 6
	colPeriod   = 0
	colStatus   = 1
	colSide     = 2
	colCategory = 3
	colLabel    = 4
	colAmount   = 5

	numChangeFields = 7
	colChAt         = 0
	colChPeriod     = 1
	colChCategory   = 2
	colChLabel      = 3
	colChOld        = 4
	colChNew        = 5
	colChReason     = 6
)

// ReadRows reads all rows from a ledger.csv reader.
func ReadRows(r io.Reader) ([]model.LedgerRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []model.LedgerRow
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRows writes rows to a ledger.csv writer (including header).
func WriteRows(w io.Writer, rows []model.LedgerRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRow converts a LedgerRow to a CSV row.
func MarshalRow(row model.LedgerRow) []string {
	rec := make([]string, numFields)
	rec[colPeriod] = row.Period
	rec[colStatus] = string(row.Status)
	rec[colSide] = string(row.Side)
	rec[colCategory] = row.Category
	rec[colLabel] = row.Label
	if row.Label != "" {
		rec[colAmount] = row.Amount.StringFixed(2)
	}
	return rec
}

// UnmarshalRow converts a CSV row to a LedgerRow.
func UnmarshalRow(record []string) (model.LedgerRow, error) {
	if len(record) != numFields {
		return model.LedgerRow{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	amount := decimal.Zero
	if record[colAmount] != "" {
		var err error
		amount, err = decimal.NewFromString(record[colAmount])
		if err != nil {
			return model.LedgerRow{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
		}
	}

	status := model.SnapshotStatus(record[colStatus])
	if status == "" {
		status = model.StatusClean
	}

	return model.LedgerRow{
		Period:   record[colPeriod],
		Status:   status,
		Side:     model.Side(record[colSide]),
		Category: record[colCategory],
		Label:    record[colLabel],
		Amount:   amount,
	}, nil
}

// ReadChanges reads all entries from a changes.csv reader.
func ReadChanges(r io.Reader) ([]model.Change, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numChangeFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading changes CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var changes []model.Change
	for i, rec := range records[1:] {
		c, err := UnmarshalChange(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		changes = append(changes, c)
	}
	return changes, nil
}

// WriteChanges writes entries to a changes.csv writer (including header).
func WriteChanges(w io.Writer, changes []model.Change) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ChangeHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range changes {
		if err := cw.Write(MarshalChange(c)); err != nil {
			return fmt.Errorf("writing change %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalChange converts a Change to a CSV row.
func MarshalChange(c model.Change) []string {
	rec := make([]string, numChangeFields)
	rec[colChAt] = c.At.UTC().Format(time.RFC3339Nano)
	rec[colChPeriod] = c.Period
	rec[colChCategory] = c.Category
	rec[colChLabel] = c.Label
	rec[colChOld] = c.Old.StringFixed(2)
	rec[colChNew] = c.New.StringFixed(2)
	rec[colChReason] = c.Reason
	return rec
}

// UnmarshalChange converts a CSV row to a Change.
func UnmarshalChange(record []string) (model.Change, error) {
	if len(record) != numChangeFields {
		return model.Change{}, fmt.Errorf("expected %d fields, got %d", numChangeFields, len(record))
	}

	at, err := time.Parse(time.RFC3339Nano, record[colChAt])
	if err != nil {
		return model.Change{}, fmt.Errorf("parsing timestamp %q: %w", record[colChAt], err)
	}
	oldAmount, err := decimal.NewFromString(record[colChOld])
	if err != nil {
		return model.Change{}, fmt.Errorf("parsing old amount %q: %w", record[colChOld], err)
	}
	newAmount, err := decimal.NewFromString(record[colChNew])
	if err != nil {
		return model.Change{}, fmt.Errorf("parsing new amount %q: %w", record[colChNew], err)
	}

	return model.Change{
		At:       at,
		Period:   record[colChPeriod],
		Category: record[colChCategory],
		Label:    record[colChLabel],
		Old:      oldAmount,
		New:      newAmount,
		Reason:   record[colChReason],
	}, nil
}
