package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rosa-dev/rosa/internal/beneficiary"
	"github.com/rosa-dev/rosa/internal/config"
	"github.com/rosa-dev/rosa/internal/gitops"
	"github.com/rosa-dev/rosa/internal/schema"
)

func newInitCommand() *cobra.Command {
	var name string
	var backend string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new rosa project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, backend)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "association name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&backend, "backend", config.BackendCSV, "ledger storage: csv or sqlite")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, backend string) error {
	cfg := config.Default(name, backend)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Create directory structure.
	dirs := []string{
		"beneficiaries",
		"ledgers",
		"schema",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := schema.Save(dir, schema.Default()); err != nil {
		return fmt.Errorf("writing category schema: %w", err)
	}

	if err := beneficiary.NewRegistry(nil).Save(dir); err != nil {
		return fmt.Errorf("writing beneficiaries: %w", err)
	}

	gitignore := ".env\n*.db-journal\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized rosa project at %s (%s)\n", dir, hash)
	return nil
}
