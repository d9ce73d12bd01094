package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hashlife/pkg/config"
	apperrors "github.com/hashlife/pkg/errors"
	"github.com/hashlife/pkg/model"
)

// newMockRepo builds a GormRepository over a sqlmock connection.
func newMockRepo(t *testing.T) (*GormRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormRepository(db), mock
}

func TestGetPatternByName(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "rule", "generation", "population", "storage_key", "compressed", "comments"}).
		AddRow(1, "glider", "B3/S23", "0", "5", "patterns/glider.mc", false, "")
	mock.ExpectQuery("SELECT .* FROM `patterns` WHERE name = \\?").
		WillReturnRows(rows)

	p, err := repo.GetPatternByName(context.Background(), "glider")
	require.NoError(t, err)
	assert.Equal(t, "glider", p.Name)
	assert.Equal(t, "B3/S23", p.Rule)
	assert.Equal(t, "5", p.Population)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPatternByNameNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .* FROM `patterns` WHERE name = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetPatternByName(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetErrorCode(err))
}

func TestSavePatternValidation(t *testing.T) {
	repo, _ := newMockRepo(t)

	err := repo.SavePattern(context.Background(), &model.Pattern{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))
}

func TestSaveRunAndUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `runs`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	run := &model.Run{
		RunUUID:     "uuid-1",
		PatternName: "glider",
		Rule:        "B3/S23",
		Increment:   "4",
		Status:      model.RunStatusRunning,
	}
	require.NoError(t, repo.SaveRun(context.Background(), run))
	assert.Equal(t, int64(7), run.ID)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `runs` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateRunStatus(context.Background(), "uuid-1", model.RunStatusDone, 1500))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRunStatusNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `runs` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateRunStatus(context.Background(), "nope", model.RunStatusDone, 0)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetErrorCode(err))
}

func TestGetRunsByPattern(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "run_uuid", "pattern_name", "status", "duration_millis"}).
		AddRow(1, "uuid-1", "glider", "done", 1500).
		AddRow(2, "uuid-2", "glider", "interrupted", 20)
	mock.ExpectQuery("SELECT .* FROM `runs` WHERE pattern_name = \\?").
		WillReturnRows(rows)

	runs, err := repo.GetRunsByPattern(context.Background(), "glider", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, model.RunStatusDone, runs[0].Status)
	assert.Equal(t, model.RunStatusInterrupted, runs[1].Status)
}

func TestDialectorFor(t *testing.T) {
	dbConfig := func(typ string) *config.DatabaseConfig {
		return &config.DatabaseConfig{
			Type: typ, Host: "localhost", Port: 5432,
			User: "u", Password: "p", Database: "patterns", Path: "./patterns.db",
		}
	}
	for _, typ := range []string{"sqlite", "postgres", "mysql"} {
		_, err := dialectorFor(dbConfig(typ))
		assert.NoError(t, err, typ)
	}
	_, err := dialectorFor(dbConfig("oracle"))
	assert.Error(t, err)
}
