// Package activity keeps the project's append-only operation log in
// logs/activity.csv. Each row names who did what to which beneficiary and
// period, so the history of a ledger can be read back without git.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Action is the kind of operation a log row records.
type Action string

const (
	ActionCreateBeneficiary Action = "create_beneficiary"
	ActionDeleteBeneficiary Action = "delete_beneficiary"
	ActionSetAmount         Action = "set_amount"
	ActionAmend             Action = "amend"
	ActionAddItem           Action = "add_item"
	ActionRemoveItem        Action = "remove_item"
	ActionAppendPeriod      Action = "append_period"
	ActionCommit            Action = "commit"
	ActionImport            Action = "import"
	ActionAddInteraction    Action = "add_interaction"
)

var knownActions = []Action{
	ActionCreateBeneficiary,
	ActionDeleteBeneficiary,
	ActionSetAmount,
	ActionAmend,
	ActionAddItem,
	ActionRemoveItem,
	ActionAppendPeriod,
	ActionCommit,
	ActionImport,
	ActionAddInteraction,
}

// ParseAction maps a log or flag value to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.TrimSpace(s))
	if !slices.Contains(knownActions, a) {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Mutates reports whether the action changes ledger amounts or structure.
func (a Action) Mutates() bool {
	switch a {
	case ActionSetAmount, ActionAmend, ActionAddItem, ActionRemoveItem, ActionAppendPeriod, ActionImport:
		return true
	}
	return false
}

// Entry is one row in the activity log.
type Entry struct {
	Timestamp   time.Time
	Actor       string
	Action      Action
	Beneficiary string
	Period      string
	Details     string
}

// Header is the CSV header for activity.csv.
const Header = "timestamp,actor,action,beneficiary,period,details"

const (
	numFields      = 6
	logFile        = "activity.csv"
	colTimestamp   = 0
	colActor       = 1
	colAction      = 2
	colBeneficiary = 3
	colPeriod      = 4
	colDetails     = 5
)

// Path returns the log location inside a project.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, "logs", logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	return []string{
		colTimestamp:   e.Timestamp.UTC().Format(time.RFC3339Nano),
		colActor:       e.Actor,
		colAction:      string(e.Action),
		colBeneficiary: e.Beneficiary,
		colPeriod:      e.Period,
		colDetails:     e.Details,
	}
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339Nano, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	action, err := ParseAction(record[colAction])
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Timestamp:   ts,
		Actor:       record[colActor],
		Action:      action,
		Beneficiary: record[colBeneficiary],
		Period:      record[colPeriod],
		Details:     record[colDetails],
	}, nil
}

// Append writes entries to the project log, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	path := Path(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	info, err := os.Stat(path)
	needsHeader := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the project log, or nil when there is none.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(Path(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// Query selects log entries. Empty fields match everything.
type Query struct {
	Beneficiary string
	Period      string
	Actions     []Action
	Since       time.Time
}

// Match reports whether e satisfies every set field of q.
func (q Query) Match(e Entry) bool {
	if q.Beneficiary != "" && e.Beneficiary != q.Beneficiary {
		return false
	}
	if q.Period != "" && e.Period != q.Period {
		return false
	}
	if len(q.Actions) > 0 && !slices.Contains(q.Actions, e.Action) {
		return false
	}
	if !q.Since.IsZero() && e.Timestamp.Before(q.Since) {
		return false
	}
	return true
}

// Filter keeps the entries matching q, in log order.
func Filter(entries []Entry, q Query) []Entry {
	var out []Entry
	for _, e := range entries {
		if q.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
