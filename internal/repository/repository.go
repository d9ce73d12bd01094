// Package repository provides the database layer of the pattern archive.
package repository

import (
	"context"

	"github.com/hashlife/pkg/model"
)

// PatternRepository defines the pattern-archive database operations.
type PatternRepository interface {
	// SavePattern inserts or updates a pattern row by name.
	SavePattern(ctx context.Context, p *model.Pattern) error

	// GetPatternByName retrieves a pattern by its unique name.
	GetPatternByName(ctx context.Context, name string) (*model.Pattern, error)

	// ListPatterns returns up to limit patterns ordered by update time.
	ListPatterns(ctx context.Context, limit int) ([]*model.Pattern, error)

	// DeletePattern removes a pattern row by name.
	DeletePattern(ctx context.Context, name string) error
}

// RunRepository defines the run-history database operations.
type RunRepository interface {
	// SaveRun inserts a run record.
	SaveRun(ctx context.Context, r *model.Run) error

	// UpdateRunStatus updates the status and duration of a run.
	UpdateRunStatus(ctx context.Context, runUUID string, status model.RunStatus, durationMillis int64) error

	// GetRunsByPattern retrieves the runs recorded for a pattern.
	GetRunsByPattern(ctx context.Context, patternName string, limit int) ([]*model.Run, error)
}

// Repository bundles all archive repositories behind one handle.
type Repository interface {
	PatternRepository
	RunRepository

	// Migrate creates or updates the archive schema.
	Migrate(ctx context.Context) error

	// Close releases the underlying database connections.
	Close() error
}
