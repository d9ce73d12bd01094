package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/hashlife/pkg/errors"
	"github.com/hashlife/pkg/model"
)

// GormRepository implements Repository on top of a gorm DB handle.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository wraps an existing gorm DB handle.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// DB exposes the underlying handle for tests.
func (r *GormRepository) DB() *gorm.DB {
	return r.db
}

// Migrate creates or updates the archive schema.
func (r *GormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&PatternRow{}, &RunRow{}); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "schema migration failed", err)
	}
	return nil
}

// Close releases the underlying database connections.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SavePattern inserts or updates a pattern row by name.
func (r *GormRepository) SavePattern(ctx context.Context, p *model.Pattern) error {
	if err := p.Validate(); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid pattern", err)
	}
	row := fromPatternModel(p)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"rule", "generation", "population", "storage_key", "compressed", "comments", "update_time",
			}),
		}).
		Create(row).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save pattern", err)
	}
	p.ID = row.ID
	return nil
}

// GetPatternByName retrieves a pattern by its unique name.
func (r *GormRepository) GetPatternByName(ctx context.Context, name string) (*model.Pattern, error) {
	var row PatternRow
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("pattern %q not found", name))
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to query pattern", err)
	}
	return row.ToModel(), nil
}

// ListPatterns returns up to limit patterns ordered by update time.
func (r *GormRepository) ListPatterns(ctx context.Context, limit int) ([]*model.Pattern, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []PatternRow
	err := r.db.WithContext(ctx).
		Order("update_time DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to list patterns", err)
	}
	patterns := make([]*model.Pattern, 0, len(rows))
	for i := range rows {
		patterns = append(patterns, rows[i].ToModel())
	}
	return patterns, nil
}

// DeletePattern removes a pattern row by name.
func (r *GormRepository) DeletePattern(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&PatternRow{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to delete pattern", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("pattern %q not found", name))
	}
	return nil
}

// SaveRun inserts a run record.
func (r *GormRepository) SaveRun(ctx context.Context, run *model.Run) error {
	if err := run.Validate(); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid run", err)
	}
	row := fromRunModel(run)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to save run", err)
	}
	run.ID = row.ID
	return nil
}

// UpdateRunStatus updates the status and duration of a run.
func (r *GormRepository) UpdateRunStatus(ctx context.Context, runUUID string, status model.RunStatus, durationMillis int64) error {
	result := r.db.WithContext(ctx).
		Model(&RunRow{}).
		Where("run_uuid = ?", runUUID).
		Updates(map[string]interface{}{
			"status":          status,
			"duration_millis": durationMillis,
		})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "failed to update run", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("run %q not found", runUUID))
	}
	return nil
}

// GetRunsByPattern retrieves the runs recorded for a pattern.
func (r *GormRepository) GetRunsByPattern(ctx context.Context, patternName string, limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []RunRow
	err := r.db.WithContext(ctx).
		Where("pattern_name = ?", patternName).
		Order("create_time DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabaseError, "failed to list runs", err)
	}
	runs := make([]*model.Run, 0, len(rows))
	for i := range rows {
		runs = append(runs, rows[i].ToModel())
	}
	return runs, nil
}
