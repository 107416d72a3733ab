package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/period"
)

// ledgersDir holds one directory per beneficiary.
const ledgersDir = "ledgers"

// FileRepository stores ledgers as CSV files under the project root:
//
//	ledgers/<id>/<YYYY>/<MM>/ledger.csv
//	ledgers/<id>/changes.csv
//	interactions/<id>.csv
type FileRepository struct {
	repoRoot string
}

// NewFileRepository creates a FileRepository rooted at repoRoot.
func NewFileRepository(repoRoot string) *FileRepository {
	return &FileRepository{repoRoot: repoRoot}
}

// Load reads every period file of a beneficiary in chronological order.
func (r *FileRepository) Load(_ context.Context, beneficiaryID string) (*ledger.Ledger, error) {
	dir, err := r.dir(beneficiaryID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, beneficiaryID)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "ledger.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing periods: %w", err)
	}
	// YYYY/MM paths sort chronologically.
	sort.Strings(paths)

	var rows []model.LedgerRow
	for _, path := range paths {
		periodRows, err := readRowsFile(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, periodRows...)
	}

	changes, err := readChangesFile(filepath.Join(dir, "changes.csv"))
	if err != nil {
		return nil, err
	}

	l, err := ledger.FromRows(rows, changes)
	if err != nil {
		return nil, fmt.Errorf("rebuilding ledger %s: %w", beneficiaryID, err)
	}
	return l, nil
}

// Save writes the whole ledger to a staging directory and swaps it in, so a
// failed write leaves the previous version in place.
func (r *FileRepository) Save(_ context.Context, beneficiaryID string, l *ledger.Ledger) error {
	dir, err := r.dir(beneficiaryID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("creating ledgers dir: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(dir), "."+beneficiaryID+"-*")
	if err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	byPeriod := make(map[string][]model.LedgerRow)
	for _, row := range l.Breakdown() {
		byPeriod[row.Period] = append(byPeriod[row.Period], row)
	}
	for _, p := range l.Periods() {
		if err := writeRowsFile(monthPath(staging, p), byPeriod[p]); err != nil {
			return err
		}
	}
	if err := writeChangesFile(filepath.Join(staging, "changes.csv"), l.Changes()); err != nil {
		return err
	}

	return swapDir(staging, dir)
}

// swapDir moves src to dst. An existing dst is set aside first and only
// removed once src is in place; it is restored if the move fails.
func swapDir(src, dst string) error {
	backup := ""
	if _, err := os.Stat(dst); err == nil {
		backup = filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+"-old")
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("clearing stale backup: %w", err)
		}
		if err := os.Rename(dst, backup); err != nil {
			return fmt.Errorf("setting previous ledger aside: %w", err)
		}
	}

	if err := os.Rename(src, dst); err != nil {
		if backup != "" {
			if rerr := os.Rename(backup, dst); rerr != nil {
				return fmt.Errorf("replacing ledger: %w (previous version kept at %s: %v)", err, backup, rerr)
			}
		}
		return fmt.Errorf("replacing ledger: %w", err)
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("removing previous ledger: %w", err)
		}
	}
	return nil
}

// Delete removes a beneficiary's ledger directory and interactions.
func (r *FileRepository) Delete(_ context.Context, beneficiaryID string) error {
	dir, err := r.dir(beneficiaryID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, beneficiaryID)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting ledger %s: %w", beneficiaryID, err)
	}
	if err := os.Remove(r.interactionsPath(beneficiaryID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting interactions %s: %w", beneficiaryID, err)
	}
	return nil
}

func (r *FileRepository) dir(beneficiaryID string) (string, error) {
	if beneficiaryID == "" || beneficiaryID != filepath.Base(beneficiaryID) || beneficiaryID[0] == '.' {
		return "", fmt.Errorf("invalid beneficiary ID %q", beneficiaryID)
	}
	return filepath.Join(r.repoRoot, ledgersDir, beneficiaryID), nil
}

func monthPath(dir, p string) string {
	year, month, _ := period.Parse(p)
	return filepath.Join(dir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "ledger.csv")
}

func readRowsFile(path string) ([]model.LedgerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return rows, nil
}

func writeRowsFile(path string, rows []model.LedgerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating period dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating ledger file: %w", err)
	}
	defer f.Close()

	if err := WriteRows(f, rows); err != nil {
		return fmt.Errorf("writing ledger %s: %w", path, err)
	}
	return nil
}

func readChangesFile(path string) ([]model.Change, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening changes: %w", err)
	}
	defer f.Close()

	return ReadChanges(f)
}

func writeChangesFile(path string, changes []model.Change) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating changes file: %w", err)
	}
	defer f.Close()

	if err := WriteChanges(f, changes); err != nil {
		return fmt.Errorf("writing changes: %w", err)
	}
	return nil
}
