package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rosa-dev/rosa/internal/config"
	"github.com/rosa-dev/rosa/internal/logging"
	"github.com/rosa-dev/rosa/internal/report"
	"github.com/rosa-dev/rosa/internal/tracking"
)

// project is an opened rosa directory.
type project struct {
	root   string
	cfg    *config.Config
	logger *zap.Logger
	svc    *tracking.Service
}

func openProject(repoDir string) (*project, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	// ROSA_* overrides may live in the project's .env; real environment
	// variables win.
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%s is not a rosa project: %w", root, err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	svc, err := tracking.Open(root, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &project{root: root, cfg: cfg, logger: logger, svc: svc}, nil
}

func (p *project) Close() {
	if err := p.svc.Close(); err != nil {
		p.logger.Warn("closing store", zap.Error(err))
	}
	_ = p.logger.Sync()
}

func (p *project) formatter() (*report.Formatter, error) {
	return report.NewFormatter(p.cfg.Display.Locale, p.cfg.Display.Currency)
}
