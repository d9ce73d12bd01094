// Package archive implements the pattern archive: macrocell files in
// object storage, searchable metadata and run history in the database.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/hashlife/internal/engine"
	"github.com/hashlife/internal/repository"
	"github.com/hashlife/internal/storage"
	"github.com/hashlife/pkg/compression"
	apperrors "github.com/hashlife/pkg/errors"
	"github.com/hashlife/pkg/model"
	"github.com/hashlife/pkg/utils"
)

// Service archives patterns and records runs.
type Service struct {
	repo     repository.Repository
	store    storage.Storage
	clock    utils.Clock
	logger   utils.Logger
	compress bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock (used by tests).
func WithClock(c utils.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger replaces the logger.
func WithLogger(l utils.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCompression gzips macrocell files before upload.
func WithCompression(on bool) Option {
	return func(s *Service) { s.compress = on }
}

// NewService creates an archive service over the given repository and
// object storage.
func NewService(repo repository.Repository, store storage.Storage, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		store:  store,
		clock:  utils.NewRealClock(),
		logger: utils.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// patternKey derives the storage key of a pattern's macrocell file.
func patternKey(name string, compressed bool) string {
	key := fmt.Sprintf("patterns/%s.mc", name)
	if compressed {
		key += ".gz"
	}
	return key
}

// SavePattern serializes the engine's universe, uploads the macrocell file
// and records the pattern metadata.
func (s *Service) SavePattern(ctx context.Context, name string, e *engine.Engine, comments string) (*model.Pattern, error) {
	var buf bytes.Buffer
	if err := e.WriteMacrocell(&buf, comments); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to serialize pattern", err)
	}
	data := buf.Bytes()
	if s.compress {
		compressed, err := compression.NewGzipCompressor(compression.LevelDefault).Compress(data)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUploadError, "failed to compress pattern", err)
		}
		data = compressed
	}

	key := patternKey(name, s.compress)
	if err := s.store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUploadError, "failed to upload pattern", err)
	}

	pop := e.GetPopulation()
	p := &model.Pattern{
		Name:       name,
		Rule:       e.GetRule(),
		Generation: e.Generation().String(),
		Population: pop.String(),
		StorageKey: key,
		Compressed: s.compress,
		Comments:   comments,
	}
	if err := s.repo.SavePattern(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("archived pattern %s (%d bytes, rule %s)", name, len(data), p.Rule)
	return p, nil
}

// LoadPattern fetches an archived pattern into the engine, replacing its
// current universe.
func (s *Service) LoadPattern(ctx context.Context, name string, e *engine.Engine) (*model.Pattern, error) {
	p, err := s.repo.GetPatternByName(ctx, name)
	if err != nil {
		return nil, err
	}
	rc, err := s.store.Download(ctx, p.StorageKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDownloadError, "failed to download pattern", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDownloadError, "failed to read pattern", err)
	}
	if p.Compressed {
		data, err = compression.AutoDecompress(data)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDownloadError, "failed to decompress pattern", err)
		}
	}
	if err := e.ReadMacrocell(bytes.NewReader(data)); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to parse pattern", err)
	}
	return p, nil
}

// ListPatterns returns archived patterns.
func (s *Service) ListPatterns(ctx context.Context, limit int) ([]*model.Pattern, error) {
	return s.repo.ListPatterns(ctx, limit)
}

// DeletePattern removes the pattern row and its stored file.
func (s *Service) DeletePattern(ctx context.Context, name string) error {
	p, err := s.repo.GetPatternByName(ctx, name)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p.StorageKey); err != nil {
		s.logger.Warn("failed to delete stored file %s: %v", p.StorageKey, err)
	}
	return s.repo.DeletePattern(ctx, name)
}

// RecordRun executes fn as a recorded run of the given pattern: a run row
// is created first, then updated with the outcome and duration.
func (s *Service) RecordRun(ctx context.Context, patternName string, e *engine.Engine, fn func() error) (*model.Run, error) {
	run := &model.Run{
		RunUUID:         uuid.NewString(),
		PatternName:     patternName,
		Rule:            e.GetRule(),
		Increment:       e.GetIncrement().String(),
		StartGeneration: e.Generation().String(),
		Status:          model.RunStatusRunning,
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return nil, err
	}

	start := s.clock.Now()
	err := fn()
	duration := s.clock.Since(start).Milliseconds()

	run.EndGeneration = e.Generation().String()
	run.FinalPopulation = e.GetPopulation().String()
	switch {
	case err == nil:
		run.Status = model.RunStatusDone
	case apperrors.IsInterrupted(err):
		run.Status = model.RunStatusInterrupted
	default:
		run.Status = model.RunStatusFailed
	}
	run.DurationMillis = duration
	if uerr := s.repo.UpdateRunStatus(ctx, run.RunUUID, run.Status, duration); uerr != nil {
		s.logger.Warn("failed to update run %s: %v", run.RunUUID, uerr)
	}
	if err != nil {
		return run, err
	}
	return run, nil
}

// Runs returns the run history of a pattern.
func (s *Service) Runs(ctx context.Context, patternName string, limit int) ([]*model.Run, error) {
	return s.repo.GetRunsByPattern(ctx, patternName, limit)
}
