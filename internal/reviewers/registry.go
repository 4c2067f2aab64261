// Package reviewers holds the static table of review tasks.
//
// The registry is built once at process start and never mutated. Callers
// that need different instruction text or weights derive a new registry
// with WithOverrides.
package reviewers

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/panel/pkg/models"
)

// DefaultBaseWeight is used for identifiers missing from the table.
const DefaultBaseWeight = 0.5

// Registry maps task identifiers to immutable descriptors.
type Registry struct {
	descriptors []models.TaskDescriptor
	index       map[models.TaskID]int
}

var builtin = []models.TaskDescriptor{
	{ID: models.TaskMethodology, Name: "Methodology Expert", Role: models.RolePrimary, BaseWeight: 0.9, Instructions: methodologyInstructions},
	{ID: models.TaskResults, Name: "Results Analyst", Role: models.RolePrimary, BaseWeight: 0.7, Instructions: resultsInstructions},
	{ID: models.TaskLiterature, Name: "Literature Expert", Role: models.RolePrimary, BaseWeight: 0.6, Instructions: literatureInstructions},
	{ID: models.TaskStructure, Name: "Structure & Clarity Reviewer", Role: models.RolePrimary, BaseWeight: 0.3, Instructions: structureInstructions},
	{ID: models.TaskImpact, Name: "Impact & Innovation Analyst", Role: models.RolePrimary, BaseWeight: 0.7, Instructions: impactInstructions},
	{ID: models.TaskContradiction, Name: "Contradiction Checker", Role: models.RolePrimary, BaseWeight: 0.9, Instructions: contradictionInstructions},
	{ID: models.TaskEthics, Name: "Ethics & Integrity Reviewer", Role: models.RolePrimary, BaseWeight: 0.5, Instructions: ethicsInstructions},
	{ID: models.TaskAIOrigin, Name: "AI Origin Detector", Role: models.RolePrimary, BaseWeight: 0.4, Instructions: aiOriginInstructions},
	{ID: models.TaskHallucination, Name: "Hallucination Detector", Role: models.RolePrimary, BaseWeight: 0.6, Instructions: hallucinationInstructions},
	{ID: models.TaskCoordinator, Name: "Review Coordinator", Role: models.RoleAggregator, BaseWeight: 1.0, Instructions: coordinatorInstructions},
	{ID: models.TaskSummary, Name: "Author & Editor Summary", Role: models.RoleSummarizer, BaseWeight: 0.8, Instructions: summaryInstructions},
	{ID: models.TaskEditor, Name: "Journal Editor", Role: models.RoleDecision, BaseWeight: 0.8, Instructions: editorInstructions},
}

var defaultRegistry = mustNew(builtin)

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

func mustNew(descs []models.TaskDescriptor) *Registry {
	r, err := New(descs)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a registry from descriptors. Declaration order becomes the
// canonical order used when combining results.
func New(descs []models.TaskDescriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]models.TaskDescriptor, 0, len(descs)),
		index:       make(map[models.TaskID]int, len(descs)),
	}
	for _, d := range descs {
		if d.ID == "" {
			return nil, errors.New("descriptor with empty id")
		}
		if _, dup := r.index[d.ID]; dup {
			return nil, fmt.Errorf("duplicate descriptor %q", d.ID)
		}
		if !d.Role.Valid() {
			return nil, fmt.Errorf("descriptor %q: invalid role %q", d.ID, d.Role)
		}
		if d.BaseWeight < 0 || d.BaseWeight > 1 {
			return nil, fmt.Errorf("descriptor %q: base weight %.2f outside [0,1]", d.ID, d.BaseWeight)
		}
		r.index[d.ID] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}
	return r, nil
}

// Get returns the descriptor for id.
func (r *Registry) Get(id models.TaskID) (models.TaskDescriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.TaskDescriptor{}, false
	}
	return r.descriptors[i], true
}

// BaseWeight returns the weight for id, or DefaultBaseWeight if unknown.
func (r *Registry) BaseWeight(id models.TaskID) float64 {
	if d, ok := r.Get(id); ok {
		return d.BaseWeight
	}
	return DefaultBaseWeight
}

// All returns a copy of every descriptor in canonical order.
func (r *Registry) All() []models.TaskDescriptor {
	return append([]models.TaskDescriptor(nil), r.descriptors...)
}

// Primary returns the primary descriptors in canonical order.
func (r *Registry) Primary() []models.TaskDescriptor {
	var out []models.TaskDescriptor
	for _, d := range r.descriptors {
		if d.Role == models.RolePrimary {
			out = append(out, d)
		}
	}
	return out
}

// ForRole returns the first descriptor with the given role.
func (r *Registry) ForRole(role models.Role) (models.TaskDescriptor, bool) {
	for _, d := range r.descriptors {
		if d.Role == role {
			return d, true
		}
	}
	return models.TaskDescriptor{}, false
}

// Order returns every identifier in canonical order.
func (r *Registry) Order() []models.TaskID {
	ids := make([]models.TaskID, len(r.descriptors))
	for i, d := range r.descriptors {
		ids[i] = d.ID
	}
	return ids
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Override replaces fields of an existing descriptor. Zero values keep the
// current setting.
type Override struct {
	ID           models.TaskID `yaml:"id"`
	Name         string        `yaml:"name,omitempty"`
	Instructions string        `yaml:"instructions,omitempty"`
	BaseWeight   *float64      `yaml:"base_weight,omitempty"`
}

type overrideFile struct {
	Reviewers []Override `yaml:"reviewers"`
}

// WithOverrides returns a new registry with overrides applied.
func (r *Registry) WithOverrides(overrides []Override) (*Registry, error) {
	descs := r.All()
	for _, o := range overrides {
		i, ok := r.index[o.ID]
		if !ok {
			return nil, fmt.Errorf("override for unknown reviewer %q", o.ID)
		}
		if o.Name != "" {
			descs[i].Name = o.Name
		}
		if o.Instructions != "" {
			descs[i].Instructions = o.Instructions
		}
		if o.BaseWeight != nil {
			descs[i].BaseWeight = *o.BaseWeight
		}
	}
	return New(descs)
}

// LoadOverrides reads a YAML overrides file and applies it to r.
func (r *Registry) LoadOverrides(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reviewer overrides: %w", err)
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reviewer overrides %s: %w", path, err)
	}
	return r.WithOverrides(f.Reviewers)
}

// Dump writes the registry as a YAML overrides document, suitable as a
// starting point for LoadOverrides.
func (r *Registry) Dump(w io.Writer) error {
	f := overrideFile{Reviewers: make([]Override, 0, len(r.descriptors))}
	for _, d := range r.descriptors {
		weight := d.BaseWeight
		f.Reviewers = append(f.Reviewers, Override{
			ID:           d.ID,
			Name:         d.Name,
			Instructions: d.Instructions,
			BaseWeight:   &weight,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode reviewers: %w", err)
	}
	return enc.Close()
}
