package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rosa-dev/rosa/internal/model"
)

// RelPath is where a project keeps its catalog, relative to the repo root.
const RelPath = "schema/categories.yaml"

// Load reads and validates <repoRoot>/schema/categories.yaml.
func Load(repoRoot string) (model.CategorySchema, error) {
	path := filepath.Join(repoRoot, RelPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return model.CategorySchema{}, fmt.Errorf("reading schema: %w", err)
	}

	var s model.CategorySchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return model.CategorySchema{}, fmt.Errorf("parsing schema: %w", err)
	}
	if err := Validate(s); err != nil {
		return model.CategorySchema{}, err
	}
	return s, nil
}

// Save validates s and writes it to <repoRoot>/schema/categories.yaml.
func Save(repoRoot string, s model.CategorySchema) error {
	if err := Validate(s); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	path := filepath.Join(repoRoot, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating schema dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	return nil
}
