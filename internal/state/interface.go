// Package state provides SQLite-based run history for panel.
package state

import (
	"io"

	"github.com/ShayCichocki/panel/pkg/models"
)

// RunStore handles run persistence operations.
type RunStore interface {
	SaveRun(run *models.RunResult, order []models.TaskID, opts SaveOptions) error
	ListRuns(limit int) ([]RunSummary, error)
	GetRun(idOrPrefix string) (*RunRecord, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// StateStore defines the interface for run history persistence, so callers
// do not depend on the concrete SQLite implementation.
type StateStore interface {
	io.Closer
	Migrator
	RunStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ StateStore = (*DB)(nil)
	_ Migrator   = (*DB)(nil)
	_ RunStore   = (*DB)(nil)
)
