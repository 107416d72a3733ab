package tracking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rosa-dev/rosa/internal/activity"
	"github.com/rosa-dev/rosa/internal/intake"
	"github.com/rosa-dev/rosa/internal/ledger"
)

// ImportResult summarizes an Import run.
type ImportResult struct {
	Files   []string
	Entries int
}

// Import applies every intake file waiting in import/ to period p. All
// files are applied in one change: if any entry is rejected, nothing is
// saved and no file is moved. Applied files go to import/processed/.
func (s *Service) Import(ctx context.Context, id, p string) (ImportResult, error) {
	files, err := intake.Scan(s.root)
	if err != nil {
		return ImportResult{}, err
	}
	if len(files) == 0 {
		return ImportResult{}, nil
	}

	registry := intake.DefaultRegistry()
	var res ImportResult
	_, err = s.mutate(ctx, id, func(l *ledger.Ledger) error {
		for _, f := range files {
			entries, err := registry.ParseFile(f.Path)
			if err != nil {
				return err
			}
			for i, e := range entries {
				if err := l.SetAmount(p, e.Category, e.Label, e.Amount); err != nil {
					return fmt.Errorf("%s entry %d: %w", f.Name, i+1, err)
				}
			}
			res.Files = append(res.Files, f.Name)
			res.Entries += len(entries)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	for _, name := range res.Files {
		if err := intake.MarkProcessed(s.root, name); err != nil {
			return res, err
		}
	}
	s.logger.Info("intake imported",
		zap.String("beneficiary_id", id),
		zap.String("period", p),
		zap.Strings("files", res.Files),
		zap.Int("entries", res.Entries))

	details := fmt.Sprintf("%d entries from %d files", res.Entries, len(res.Files))
	if err := s.record(activity.ActionImport, id, p, details); err != nil {
		return res, err
	}
	return res, nil
}
