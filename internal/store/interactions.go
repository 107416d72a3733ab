package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rosa-dev/rosa/internal/model"
)

// InteractionHeader is the CSV header for interactions/<id>.csv.
const InteractionHeader = "id,at,actor,type,title,period,description,changes_made,follow_up,follow_up_date,follow_up_notes"

const (
	numInteractionFields = 11
	colInID              = 0
	colInAt              = 1
	colInActor           = 2
	colInType            = 3
	colInTitle           = 4
	colInPeriod          = 5
	colInDescription     = 6
	colInChanges         = 7
	colInFollowUp        = 8
	colInFollowUpDate    = 9
	colInFollowUpNotes   = 10
)

// interactionsDir sits beside ledgersDir so ledger saves never touch it.
const interactionsDir = "interactions"

// MarshalInteraction converts an Interaction to a CSV row. The beneficiary
// is implied by the file.
func MarshalInteraction(in model.Interaction) []string {
	rec := make([]string, numInteractionFields)
	rec[colInID] = in.ID
	rec[colInAt] = in.At.UTC().Format(time.RFC3339Nano)
	rec[colInActor] = in.Actor
	rec[colInType] = string(in.Type)
	rec[colInTitle] = in.Title
	rec[colInPeriod] = in.Period
	rec[colInDescription] = in.Description
	rec[colInChanges] = in.ChangesMade
	rec[colInFollowUp] = strconv.FormatBool(in.FollowUpRequired)
	if !in.FollowUpDate.IsZero() {
		rec[colInFollowUpDate] = in.FollowUpDate.Format(time.DateOnly)
	}
	rec[colInFollowUpNotes] = in.FollowUpNotes
	return rec
}

// UnmarshalInteraction converts a CSV row to an Interaction of beneficiaryID.
func UnmarshalInteraction(beneficiaryID string, record []string) (model.Interaction, error) {
	if len(record) != numInteractionFields {
		return model.Interaction{}, fmt.Errorf("expected %d fields, got %d", numInteractionFields, len(record))
	}

	at, err := time.Parse(time.RFC3339Nano, record[colInAt])
	if err != nil {
		return model.Interaction{}, fmt.Errorf("parsing timestamp %q: %w", record[colInAt], err)
	}
	typ, err := model.ParseInteractionType(record[colInType])
	if err != nil {
		return model.Interaction{}, err
	}
	followUp, err := strconv.ParseBool(record[colInFollowUp])
	if err != nil {
		return model.Interaction{}, fmt.Errorf("parsing follow-up flag %q: %w", record[colInFollowUp], err)
	}
	var followUpDate time.Time
	if record[colInFollowUpDate] != "" {
		followUpDate, err = time.Parse(time.DateOnly, record[colInFollowUpDate])
		if err != nil {
			return model.Interaction{}, fmt.Errorf("parsing follow-up date %q: %w", record[colInFollowUpDate], err)
		}
	}

	return model.Interaction{
		ID:               record[colInID],
		Beneficiary:      beneficiaryID,
		Type:             typ,
		Title:            record[colInTitle],
		Description:      record[colInDescription],
		Period:           record[colInPeriod],
		ChangesMade:      record[colInChanges],
		FollowUpRequired: followUp,
		FollowUpDate:     followUpDate,
		FollowUpNotes:    record[colInFollowUpNotes],
		Actor:            record[colInActor],
		At:               at,
	}, nil
}

// ReadInteractions reads all rows from an interactions CSV reader.
func ReadInteractions(beneficiaryID string, r io.Reader) ([]model.Interaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numInteractionFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading interactions CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.Interaction
	for i, rec := range records[1:] {
		in, err := UnmarshalInteraction(beneficiaryID, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// newestFirst orders interactions by descending time. Equal timestamps put
// the later insert first.
func newestFirst(list []model.Interaction) {
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].At.After(list[j].At) })
}

// AddInteraction appends one interaction to the beneficiary's file. The
// ledger must exist.
func (r *FileRepository) AddInteraction(_ context.Context, in model.Interaction) error {
	dir, err := r.dir(in.Beneficiary)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, in.Beneficiary)
	}

	path := r.interactionsPath(in.Beneficiary)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating interactions dir: %w", err)
	}
	info, err := os.Stat(path)
	needsHeader := errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening interactions: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(InteractionHeader, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.Write(MarshalInteraction(in)); err != nil {
		return fmt.Errorf("writing interaction: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Interactions returns a beneficiary's interactions, newest first.
func (r *FileRepository) Interactions(_ context.Context, beneficiaryID string) ([]model.Interaction, error) {
	dir, err := r.dir(beneficiaryID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, beneficiaryID)
	}

	f, err := os.Open(r.interactionsPath(beneficiaryID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening interactions: %w", err)
	}
	defer f.Close()

	list, err := ReadInteractions(beneficiaryID, f)
	if err != nil {
		return nil, err
	}
	newestFirst(list)
	return list, nil
}

func (r *FileRepository) interactionsPath(beneficiaryID string) string {
	return filepath.Join(r.repoRoot, interactionsDir, beneficiaryID+".csv")
}
