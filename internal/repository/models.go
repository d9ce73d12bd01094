package repository

import (
	"time"

	"github.com/hashlife/pkg/model"
)

// PatternRow represents the patterns table.
type PatternRow struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;type:varchar(128);uniqueIndex"`
	Rule       string    `gorm:"column:rule;type:varchar(2048)"`
	Generation string    `gorm:"column:generation;type:varchar(256)"`
	Population string    `gorm:"column:population;type:varchar(256)"`
	StorageKey string    `gorm:"column:storage_key;type:varchar(512)"`
	Compressed bool      `gorm:"column:compressed"`
	Comments   string    `gorm:"column:comments;type:text"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime"`
}

// TableName returns the table name for PatternRow.
func (PatternRow) TableName() string {
	return "patterns"
}

// ToModel converts PatternRow to model.Pattern.
func (p *PatternRow) ToModel() *model.Pattern {
	return &model.Pattern{
		ID:         p.ID,
		Name:       p.Name,
		Rule:       p.Rule,
		Generation: p.Generation,
		Population: p.Population,
		StorageKey: p.StorageKey,
		Compressed: p.Compressed,
		Comments:   p.Comments,
		CreateTime: p.CreateTime,
		UpdateTime: p.UpdateTime,
	}
}

// fromPatternModel converts model.Pattern to a PatternRow.
func fromPatternModel(p *model.Pattern) *PatternRow {
	return &PatternRow{
		ID:         p.ID,
		Name:       p.Name,
		Rule:       p.Rule,
		Generation: p.Generation,
		Population: p.Population,
		StorageKey: p.StorageKey,
		Compressed: p.Compressed,
		Comments:   p.Comments,
	}
}

// RunRow represents the runs table.
type RunRow struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID         string          `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	PatternName     string          `gorm:"column:pattern_name;type:varchar(128);index"`
	Rule            string          `gorm:"column:rule;type:varchar(2048)"`
	Increment       string          `gorm:"column:increment;type:varchar(256)"`
	StartGeneration string          `gorm:"column:start_generation;type:varchar(256)"`
	EndGeneration   string          `gorm:"column:end_generation;type:varchar(256)"`
	FinalPopulation string          `gorm:"column:final_population;type:varchar(256)"`
	Status          model.RunStatus `gorm:"column:status;type:varchar(32)"`
	DurationMillis  int64           `gorm:"column:duration_millis"`
	CreateTime      time.Time       `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for RunRow.
func (RunRow) TableName() string {
	return "runs"
}

// ToModel converts RunRow to model.Run.
func (r *RunRow) ToModel() *model.Run {
	return &model.Run{
		ID:              r.ID,
		RunUUID:         r.RunUUID,
		PatternName:     r.PatternName,
		Rule:            r.Rule,
		Increment:       r.Increment,
		StartGeneration: r.StartGeneration,
		EndGeneration:   r.EndGeneration,
		FinalPopulation: r.FinalPopulation,
		Status:          r.Status,
		DurationMillis:  r.DurationMillis,
		CreateTime:      r.CreateTime,
	}
}

// fromRunModel converts model.Run to a RunRow.
func fromRunModel(r *model.Run) *RunRow {
	return &RunRow{
		ID:              r.ID,
		RunUUID:         r.RunUUID,
		PatternName:     r.PatternName,
		Rule:            r.Rule,
		Increment:       r.Increment,
		StartGeneration: r.StartGeneration,
		EndGeneration:   r.EndGeneration,
		FinalPopulation: r.FinalPopulation,
		Status:          r.Status,
		DurationMillis:  r.DurationMillis,
	}
}
