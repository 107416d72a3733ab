package beneficiary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rosa-dev/rosa/internal/model"
)

// ErrNotFound is returned for an unknown beneficiary ID.
var ErrNotFound = errors.New("beneficiary not found")

const relPath = "beneficiaries/beneficiaries.csv"

// Registry provides in-memory lookup over the beneficiary list.
type Registry struct {
	list []model.Beneficiary
	byID map[string]int
}

// NewRegistry creates a Registry from a slice of beneficiaries.
func NewRegistry(list []model.Beneficiary) *Registry {
	r := &Registry{list: slices.Clone(list)}
	r.reindex()
	return r
}

// Load reads beneficiaries.csv from a repo root. A missing file yields an
// empty registry.
func Load(repoRoot string) (*Registry, error) {
	path := filepath.Join(repoRoot, relPath)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening beneficiaries: %w", err)
	}
	defer f.Close()

	list, err := ReadBeneficiaries(f)
	if err != nil {
		return nil, fmt.Errorf("reading beneficiaries: %w", err)
	}
	return NewRegistry(list), nil
}

// All returns all beneficiaries in creation order.
func (r *Registry) All() []model.Beneficiary {
	return slices.Clone(r.list)
}

// Get returns a beneficiary by ID.
func (r *Registry) Get(id string) (model.Beneficiary, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Beneficiary{}, false
	}
	return r.list[i], true
}

// Exists reports whether a beneficiary ID exists.
func (r *Registry) Exists(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Add registers a new beneficiary.
func (r *Registry) Add(b model.Beneficiary) error {
	if b.ID == "" {
		return fmt.Errorf("beneficiary has no ID")
	}
	if r.Exists(b.ID) {
		return fmt.Errorf("beneficiary %s already exists", b.ID)
	}
	r.list = append(r.list, b)
	r.byID[b.ID] = len(r.list) - 1
	return nil
}

// Remove unregisters a beneficiary.
func (r *Registry) Remove(id string) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.list = slices.Delete(r.list, i, i+1)
	r.reindex()
	return nil
}

// Save writes the registry to beneficiaries/beneficiaries.csv.
func (r *Registry) Save(repoRoot string) error {
	path := filepath.Join(repoRoot, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating beneficiaries dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating beneficiaries file: %w", err)
	}
	defer f.Close()

	if err := WriteBeneficiaries(f, r.list); err != nil {
		return fmt.Errorf("writing beneficiaries: %w", err)
	}
	return nil
}

func (r *Registry) reindex() {
	r.byID = make(map[string]int, len(r.list))
	for i, b := range r.list {
		r.byID[b.ID] = i
	}
}
