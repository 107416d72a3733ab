package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rosa-dev/rosa/internal/activity"
	"github.com/rosa-dev/rosa/internal/beneficiary"
	"github.com/rosa-dev/rosa/internal/config"
	"github.com/rosa-dev/rosa/internal/gitops"
	"github.com/rosa-dev/rosa/internal/ledger"
	"github.com/rosa-dev/rosa/internal/model"
	"github.com/rosa-dev/rosa/internal/period"
	"github.com/rosa-dev/rosa/internal/schema"
	"github.com/rosa-dev/rosa/internal/store"
)

// Options configures a Service.
type Options struct {
	RepoRoot     string
	Repo         store.Repository
	Schema       model.CategorySchema
	Logger       *zap.Logger
	Actor        string
	CarryForward bool
	// Git enables a commit after every change when non-nil.
	Git *gitops.Author
	Now func() time.Time
}

// Service runs ledger operations against a project directory. Every
// mutating call loads the ledger, applies the change and saves it; a
// rejected change saves nothing.
type Service struct {
	root         string
	repo         store.Repository
	schema       model.CategorySchema
	logger       *zap.Logger
	actor        string
	carryForward bool
	git          *gitops.Author
	now          func() time.Time
	newID        func() string
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		root:         opts.RepoRoot,
		repo:         opts.Repo,
		schema:       opts.Schema,
		logger:       opts.Logger,
		actor:        opts.Actor,
		carryForward: opts.CarryForward,
		git:          opts.Git,
		now:          opts.Now,
		newID:        uuid.NewString,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.actor == "" {
		s.actor = "cli"
	}
	return s
}

// Open builds a Service for the project at repoRoot using its config and
// category schema.
func Open(repoRoot string, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	sch, err := schema.Load(repoRoot)
	if err != nil {
		return nil, err
	}

	var repo store.Repository
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path := cfg.Storage.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(repoRoot, path)
		}
		repo, err = store.NewSQLiteRepository(path, logger)
		if err != nil {
			return nil, err
		}
	default:
		repo = store.NewFileRepository(repoRoot)
	}

	opts := Options{
		RepoRoot:     repoRoot,
		Repo:         repo,
		Schema:       sch,
		Logger:       logger,
		CarryForward: cfg.Ledger.CarryForward,
	}
	if cfg.Git.AutoCommit {
		opts.Git = &gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	}
	return New(opts), nil
}

// Close releases the repository when it holds resources.
func (s *Service) Close() error {
	if c, ok := s.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CarryForward reports the configured default for AppendPeriod.
func (s *Service) CarryForward() bool { return s.carryForward }

// CurrentPeriod returns the period containing the service clock's now.
func (s *Service) CurrentPeriod() string { return period.FromTime(s.now()) }

// CreateBeneficiary registers a beneficiary and stores their ledger. A
// seeded ledger starts at period p with every schema item at zero; an
// unseeded one has no periods.
func (s *Service) CreateBeneficiary(ctx context.Context, firstName, lastName string, seeded bool, p string) (model.Beneficiary, error) {
	if firstName == "" && lastName == "" {
		return model.Beneficiary{}, fmt.Errorf("beneficiary needs a first or last name")
	}
	reg, err := beneficiary.Load(s.root)
	if err != nil {
		return model.Beneficiary{}, err
	}

	l := ledger.Empty()
	if seeded {
		if p == "" {
			p = s.CurrentPeriod()
		}
		l, err = ledger.New(s.schema, p)
		if err != nil {
			return model.Beneficiary{}, err
		}
	}

	b := model.Beneficiary{
		ID:        s.newID(),
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: s.now().UTC(),
	}
	if err := reg.Add(b); err != nil {
		return model.Beneficiary{}, err
	}
	if err := s.repo.Save(ctx, b.ID, l); err != nil {
		return model.Beneficiary{}, fmt.Errorf("saving ledger: %w", err)
	}
	if err := reg.Save(s.root); err != nil {
		return model.Beneficiary{}, err
	}

	s.logger.Info("beneficiary created",
		zap.String("beneficiary_id", b.ID),
		zap.Bool("seeded", seeded),
		zap.Strings("periods", l.Periods()))
	if err := s.record(activity.ActionCreateBeneficiary, b.ID, p, b.FullName()); err != nil {
		return b, err
	}
	return b, nil
}

// Beneficiaries lists registered beneficiaries in creation order.
func (s *Service) Beneficiaries() ([]model.Beneficiary, error) {
	reg, err := beneficiary.Load(s.root)
	if err != nil {
		return nil, err
	}
	return reg.All(), nil
}

// Beneficiary looks up one beneficiary.
func (s *Service) Beneficiary(id string) (model.Beneficiary, error) {
	reg, err := beneficiary.Load(s.root)
	if err != nil {
		return model.Beneficiary{}, err
	}
	b, ok := reg.Get(id)
	if !ok {
		return model.Beneficiary{}, fmt.Errorf("%w: %s", beneficiary.ErrNotFound, id)
	}
	return b, nil
}

// DeleteBeneficiary removes a beneficiary and their ledger.
func (s *Service) DeleteBeneficiary(ctx context.Context, id string) error {
	reg, err := beneficiary.Load(s.root)
	if err != nil {
		return err
	}
	prev := beneficiary.NewRegistry(reg.All())
	if err := reg.Remove(id); err != nil {
		return err
	}
	if err := reg.Save(s.root); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		if rerr := prev.Save(s.root); rerr != nil {
			s.logger.Error("restoring beneficiary registry", zap.String("beneficiary_id", id), zap.Error(rerr))
		}
		return fmt.Errorf("deleting ledger: %w", err)
	}

	s.logger.Info("beneficiary deleted", zap.String("beneficiary_id", id))
	return s.record(activity.ActionDeleteBeneficiary, id, "", "")
}

// Ledger loads a beneficiary's ledger.
func (s *Service) Ledger(ctx context.Context, id string) (*ledger.Ledger, error) {
	return s.repo.Load(ctx, id)
}

// SetAmount parses raw and sets one line item in period p. It returns the
// updated snapshot.
func (s *Service) SetAmount(ctx context.Context, id, p, categoryName, label, raw string) (*ledger.Snapshot, error) {
	amount, err := ledger.ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	l, err := s.mutate(ctx, id, func(l *ledger.Ledger) error {
		return l.SetAmount(p, categoryName, label, amount)
	})
	if err != nil {
		return nil, err
	}
	if err := s.record(activity.ActionSetAmount, id, p, fmt.Sprintf("%s/%s=%s", categoryName, label, amount.StringFixed(2))); err != nil {
		return nil, err
	}
	return l.Snapshot(p)
}

// Amend changes a line item in any period and records the reason.
func (s *Service) Amend(ctx context.Context, id, p, categoryName, label, raw, reason string) (model.Change, error) {
	if reason == "" {
		return model.Change{}, fmt.Errorf("an amendment needs a reason")
	}
	amount, err := ledger.ParseAmount(raw)
	if err != nil {
		return model.Change{}, err
	}
	var change model.Change
	_, err = s.mutate(ctx, id, func(l *ledger.Ledger) error {
		var aerr error
		change, aerr = l.Amend(p, categoryName, label, amount, reason, s.now().UTC())
		return aerr
	})
	if err != nil {
		return model.Change{}, err
	}
	details := fmt.Sprintf("%s/%s %s -> %s: %s", categoryName, label, change.Old.StringFixed(2), change.New.StringFixed(2), reason)
	if err := s.record(activity.ActionAmend, id, p, details); err != nil {
		return change, err
	}
	return change, nil
}

// AddItem adds a line item to the latest period. An empty raw amount
// means zero.
func (s *Service) AddItem(ctx context.Context, id, categoryName, label, raw string) error {
	amount := decimal.Zero
	if raw != "" {
		var err error
		if amount, err = ledger.ParseAmount(raw); err != nil {
			return err
		}
	}
	l, err := s.mutate(ctx, id, func(l *ledger.Ledger) error {
		return l.AddItem(categoryName, label, amount)
	})
	if err != nil {
		return err
	}
	return s.record(activity.ActionAddItem, id, latestPeriod(l), categoryName+"/"+label)
}

// RemoveItem drops a line item from the latest period.
func (s *Service) RemoveItem(ctx context.Context, id, categoryName, label string) error {
	l, err := s.mutate(ctx, id, func(l *ledger.Ledger) error {
		return l.RemoveItem(categoryName, label)
	})
	if err != nil {
		return err
	}
	return s.record(activity.ActionRemoveItem, id, latestPeriod(l), categoryName+"/"+label)
}

// AppendPeriod adds period p after the latest one. The first period of an
// empty ledger is seeded from the category schema.
func (s *Service) AppendPeriod(ctx context.Context, id, p string, carryForward bool) error {
	seeded := false
	if _, err := s.mutate(ctx, id, func(l *ledger.Ledger) error {
		if l.Len() == 0 {
			seeded = true
			return l.Seed(s.schema, p)
		}
		return l.AppendPeriod(p, carryForward)
	}); err != nil {
		return err
	}
	details := ""
	switch {
	case seeded:
		details = "seeded from schema"
	case carryForward:
		details = "carry-forward"
	}
	return s.record(activity.ActionAppendPeriod, id, p, details)
}

// Commit marks period p clean and returns its net total.
func (s *Service) Commit(ctx context.Context, id, p string) (decimal.Decimal, error) {
	var net decimal.Decimal
	_, err := s.mutate(ctx, id, func(l *ledger.Ledger) error {
		var err error
		net, err = l.Commit(p)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.record(activity.ActionCommit, id, p, "net="+net.StringFixed(2)); err != nil {
		return net, err
	}
	return net, nil
}

// Series returns the net total series of a ledger.
func (s *Service) Series(ctx context.Context, id string) ([]ledger.PeriodTotal, error) {
	l, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.NetTotalSeries(), nil
}

// Breakdown returns the line items of a ledger, one row per item.
func (s *Service) Breakdown(ctx context.Context, id string) ([]model.LedgerRow, error) {
	l, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.Breakdown(), nil
}

// History returns the recorded amendments of a ledger and the activity
// entries about its beneficiary matching q. A period in q narrows both.
func (s *Service) History(ctx context.Context, id string, q activity.Query) ([]model.Change, []activity.Entry, error) {
	l, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	entries, err := activity.Read(s.root)
	if err != nil {
		return nil, nil, err
	}
	q.Beneficiary = id

	changes := l.Changes()
	if q.Period != "" {
		changes = slices.DeleteFunc(changes, func(c model.Change) bool { return c.Period != q.Period })
	}
	return changes, activity.Filter(entries, q), nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(l *ledger.Ledger) error) (*ledger.Ledger, error) {
	l, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(l); err != nil {
		s.logger.Debug("change rejected", zap.String("beneficiary_id", id), zap.Error(err))
		return nil, err
	}
	if err := s.repo.Save(ctx, id, l); err != nil {
		return nil, fmt.Errorf("saving ledger: %w", err)
	}
	return l, nil
}

// record appends to the activity log and, when enabled, commits the
// project directory.
func (s *Service) record(action activity.Action, id, p, details string) error {
	entry := activity.Entry{
		Timestamp:   s.now().UTC(),
		Actor:       s.actor,
		Action:      action,
		Beneficiary: id,
		Period:      p,
		Details:     details,
	}
	if err := activity.Append(s.root, []activity.Entry{entry}); err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}
	s.logger.Debug("activity recorded",
		zap.String("action", string(action)),
		zap.Bool("mutates", action.Mutates()),
		zap.String("beneficiary_id", id),
		zap.String("period", p))

	if s.git == nil || !gitops.IsRepo(s.root) {
		return nil
	}
	hash, err := gitops.CommitAll(s.root, gitops.Message(string(action), id, p), *s.git)
	if err != nil {
		return fmt.Errorf("committing change: %w", err)
	}
	if hash != "" {
		s.logger.Debug("change committed", zap.String("commit", hash))
	}
	return nil
}

func latestPeriod(l *ledger.Ledger) string {
	if snap := l.Latest(); snap != nil {
		return snap.Period()
	}
	return ""
}
