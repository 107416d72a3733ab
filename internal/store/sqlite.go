package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores ledgers in a single SQLite database file.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens (and migrates) the database at dbPath.
func NewSQLiteRepository(dbPath string, logger *zap.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads a ledger's rows and changes in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context, beneficiaryID string) (*ledger.Ledger, error) {
	if err := r.ledgerExists(ctx, beneficiaryID); err != nil {
		return nil, err
	}

	rows, err := r.loadRows(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	changes, err := r.loadChanges(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}

	l, err := ledger.FromRows(rows, changes)
	if err != nil {
		return nil, fmt.Errorf("rebuilding ledger %s: %w", beneficiaryID, err)
	}
	return l, nil
}

func (r *SQLiteRepository) loadRows(ctx context.Context, beneficiaryID string) ([]model.LedgerRow, error) {
	q, err := r.db.QueryContext(ctx,
		`SELECT period, status, side, category, label, amount
		 FROM ledger_rows WHERE beneficiary_id = ? ORDER BY seq`, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("query ledger rows: %w", err)
	}
	defer q.Close()

	var rows []model.LedgerRow
	for q.Next() {
		var row model.LedgerRow
		var status, side, amount string
		if err := q.Scan(&row.Period, &status, &side, &row.Category, &row.Label, &amount); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		row.Status = model.SnapshotStatus(status)
		row.Side = model.Side(side)
		row.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
		}
		rows = append(rows, row)
	}
	return rows, q.Err()
}

func (r *SQLiteRepository) loadChanges(ctx context.Context, beneficiaryID string) ([]model.Change, error) {
	q, err := r.db.QueryContext(ctx,
		`SELECT at, period, category, label, old_amount, new_amount, reason
		 FROM ledger_changes WHERE beneficiary_id = ? ORDER BY seq`, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("query ledger changes: %w", err)
	}
	defer q.Close()

	var changes []model.Change
	for q.Next() {
		var at, oldAmount, newAmount string
		var c model.Change
		if err := q.Scan(&at, &c.Period, &c.Category, &c.Label, &oldAmount, &newAmount, &c.Reason); err != nil {
			return nil, fmt.Errorf("scan ledger change: %w", err)
		}
		// Reuse the CSV decoding so both stores agree on formats.
		c, err = UnmarshalChange([]string{at, c.Period, c.Category, c.Label, oldAmount, newAmount, c.Reason})
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, q.Err()
}

// Save replaces the stored ledger in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, beneficiaryID string, l *ledger.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledgers (beneficiary_id, updated_at) VALUES (?, ?)
		 ON CONFLICT(beneficiary_id) DO UPDATE SET updated_at = excluded.updated_at`,
		beneficiaryID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert ledger: %w", err)
	}
	for _, table := range []string{"ledger_rows", "ledger_changes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE beneficiary_id = ?`, beneficiaryID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	rows := l.Breakdown()
	for i, row := range rows {
		rec := MarshalRow(row)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_rows (beneficiary_id, seq, period, status, side, category, label, amount)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			beneficiaryID, i, rec[colPeriod], rec[colStatus], rec[colSide], rec[colCategory], rec[colLabel], row.Amount.StringFixed(2)); err != nil {
			return fmt.Errorf("insert ledger row %d: %w", i, err)
		}
	}

	changes := l.Changes()
	for i, c := range changes {
		rec := MarshalChange(c)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_changes (beneficiary_id, seq, at, period, category, label, old_amount, new_amount, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			beneficiaryID, i, rec[colChAt], rec[colChPeriod], rec[colChCategory], rec[colChLabel], rec[colChOld], rec[colChNew], rec[colChReason]); err != nil {
			return fmt.Errorf("insert ledger change %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger %s: %w", beneficiaryID, err)
	}

	r.logger.Debug("ledger saved to SQLite",
		zap.String("beneficiary_id", beneficiaryID),
		zap.Int("rows", len(rows)),
		zap.Int("changes", len(changes)))
	return nil
}

// Delete removes a ledger and everything attached to it.
func (r *SQLiteRepository) Delete(ctx context.Context, beneficiaryID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `DELETE FROM ledgers WHERE beneficiary_id = ?`, beneficiaryID)
	if err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, beneficiaryID)
	}
	for _, table := range []string{"ledger_rows", "ledger_changes", "ledger_interactions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE beneficiary_id = ?`, beneficiaryID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ledgerExists(ctx context.Context, beneficiaryID string) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledgers WHERE beneficiary_id = ?`, beneficiaryID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query ledger %s: %w", beneficiaryID, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, beneficiaryID)
	}
	return nil
}

// AddInteraction inserts one interaction for an existing ledger.
func (r *SQLiteRepository) AddInteraction(ctx context.Context, in model.Interaction) error {
	if err := r.ledgerExists(ctx, in.Beneficiary); err != nil {
		return err
	}

	rec := MarshalInteraction(in)
	followUp := 0
	if in.FollowUpRequired {
		followUp = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_interactions
		   (id, beneficiary_id, seq, at, actor, type, title, period, description, changes_made, follow_up, follow_up_date, follow_up_notes)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM ledger_interactions WHERE beneficiary_id = ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Beneficiary, in.Beneficiary,
		rec[colInAt], rec[colInActor], rec[colInType], rec[colInTitle], rec[colInPeriod],
		rec[colInDescription], rec[colInChanges], followUp, rec[colInFollowUpDate], rec[colInFollowUpNotes])
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	r.logger.Debug("interaction saved to SQLite",
		zap.String("beneficiary_id", in.Beneficiary),
		zap.String("interaction_id", in.ID))
	return nil
}

// Interactions returns a beneficiary's interactions, newest first.
func (r *SQLiteRepository) Interactions(ctx context.Context, beneficiaryID string) ([]model.Interaction, error) {
	if err := r.ledgerExists(ctx, beneficiaryID); err != nil {
		return nil, err
	}

	q, err := r.db.QueryContext(ctx,
		`SELECT id, at, actor, type, title, period, description, changes_made, follow_up, follow_up_date, follow_up_notes
		 FROM ledger_interactions WHERE beneficiary_id = ? ORDER BY seq`, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer q.Close()

	var list []model.Interaction
	for q.Next() {
		rec := make([]string, numInteractionFields)
		var followUp int
		if err := q.Scan(&rec[colInID], &rec[colInAt], &rec[colInActor], &rec[colInType], &rec[colInTitle], &rec[colInPeriod],
			&rec[colInDescription], &rec[colInChanges], &followUp, &rec[colInFollowUpDate], &rec[colInFollowUpNotes]); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		rec[colInFollowUp] = strconv.FormatBool(followUp != 0)
		in, err := UnmarshalInteraction(beneficiaryID, rec)
		if err != nil {
			return nil, err
		}
		list = append(list, in)
	}
	if err := q.Err(); err != nil {
		return nil, err
	}
	newestFirst(list)
	return list, nil
}
