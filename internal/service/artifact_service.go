package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

// RenderEngine is the rendering capability the exporter depends on. It never
// depends on a concrete rendering library.
type RenderEngine interface {
	RenderToImage(ctx context.Context, spec models.ChartSpecification) ([]byte, error)
	RenderToMarkup(ctx context.Context, spec models.ChartSpecification) ([]byte, error)
}

// BlobStore is the key-addressed storage the exporter writes artifacts to.
// Writes must be atomic: a reader either sees the previous artifact or the
// complete new one, never a partial file.
type BlobStore interface {
	Write(key string, data []byte) error
	Exists(key string) (bool, error)
	Delete(key string) error
}

// ArtifactService persists chart specifications as artifacts. Each export
// attempts the primary (raster) representation first and falls back to the
// self-contained markup representation when the raster engine is unavailable
// or errors. Falling back is a recoverable outcome logged as a warning; only
// the failure to write either representation surfaces as an error.
type ArtifactService struct {
	engine  RenderEngine
	store   BlobStore
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewArtifactService constructs the exporter.
func NewArtifactService(engine RenderEngine, store BlobStore, metrics *MetricsService, logger *zap.Logger, timeout time.Duration) *ArtifactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ArtifactService{
		engine:  engine,
		store:   store,
		metrics: metrics,
		logger:  logger,
		timeout: timeout,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Export renders the specification and persists exactly one artifact at the
// deterministic (course, chart kind) path. Concurrent exports for the same
// key serialize on a per-key lock so a half-written artifact is never visible
// to a concurrent reader; exports for different keys proceed in parallel.
func (s *ArtifactService) Export(ctx context.Context, spec models.ChartSpecification, courseID string, kind models.ChartKind) (*models.ExportedArtifact, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown chart kind")
	}

	lock := s.keyLock(models.ArtifactKey(courseID, kind))
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	artifact, err := s.attemptPrimary(ctx, spec, courseID, kind)
	if err == nil {
		s.metrics.RecordExport(string(kind), "primary")
		return artifact, nil
	}
	if !recoverableRenderFailure(err) {
		s.metrics.RecordExport(string(kind), "failed")
		return nil, err
	}

	s.logger.Warn("primary export failed, falling back to markup",
		zap.String("course_id", courseID),
		zap.String("chart_kind", string(kind)),
		zap.Error(err))

	artifact, err = s.attemptFallback(ctx, spec, courseID, kind)
	if err != nil {
		s.metrics.RecordExport(string(kind), "failed")
		return nil, err
	}
	s.metrics.RecordExport(string(kind), "fallback")
	return artifact, nil
}

// attemptPrimary renders and persists the raster representation.
func (s *ArtifactService) attemptPrimary(ctx context.Context, spec models.ChartSpecification, courseID string, kind models.ChartKind) (*models.ExportedArtifact, error) {
	start := time.Now()
	data, err := s.engine.RenderToImage(ctx, spec)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRender(string(models.RepresentationPrimary), time.Since(start))
	return s.persist(courseID, kind, models.RepresentationPrimary, data)
}

// attemptFallback serializes the specification into the markup representation
// and persists it under the same key with the fallback extension.
func (s *ArtifactService) attemptFallback(ctx context.Context, spec models.ChartSpecification, courseID string, kind models.ChartKind) (*models.ExportedArtifact, error) {
	start := time.Now()
	data, err := s.engine.RenderToMarkup(ctx, spec)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrArtifactWrite.Code, appErrors.ErrArtifactWrite.Status, "fallback render failed")
	}
	s.metrics.ObserveRender(string(models.RepresentationFallback), time.Since(start))
	return s.persist(courseID, kind, models.RepresentationFallback, data)
}

// persist writes the artifact and removes the other representation's stale
// counterpart, so exactly one artifact exists per (course, chart kind).
func (s *ArtifactService) persist(courseID string, kind models.ChartKind, rep models.ArtifactRepresentation, data []byte) (*models.ExportedArtifact, error) {
	path := models.ArtifactPath(courseID, kind, rep)
	if err := s.store.Write(path, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrArtifactWrite.Code, appErrors.ErrArtifactWrite.Status, "failed to persist chart artifact")
	}

	counterpart := models.RepresentationFallback
	if rep == models.RepresentationFallback {
		counterpart = models.RepresentationPrimary
	}
	stale := models.ArtifactPath(courseID, kind, counterpart)
	if err := s.store.Delete(stale); err != nil {
		// The fresh artifact is in place; a stale counterpart only risks the
		// assembler picking the wrong representation, so log and carry on.
		s.logger.Warn("failed to remove stale artifact counterpart",
			zap.String("path", stale), zap.Error(err))
	}

	return &models.ExportedArtifact{
		CourseID:       courseID,
		ChartKind:      kind,
		Representation: rep,
		StoragePath:    path,
		ByteSize:       int64(len(data)),
		ExportedAt:     time.Now().UTC(),
	}, nil
}

// Lookup returns the currently persisted artifact for the key, preferring the
// primary representation, or nil when neither representation exists.
func (s *ArtifactService) Lookup(courseID string, kind models.ChartKind) *models.ExportedArtifact {
	for _, rep := range []models.ArtifactRepresentation{models.RepresentationPrimary, models.RepresentationFallback} {
		path := models.ArtifactPath(courseID, kind, rep)
		if ok, err := s.store.Exists(path); err == nil && ok {
			return &models.ExportedArtifact{
				CourseID:       courseID,
				ChartKind:      kind,
				Representation: rep,
				StoragePath:    path,
			}
		}
	}
	return nil
}

func (s *ArtifactService) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// recoverableRenderFailure reports whether the error should trigger the
// markup fallback rather than aborting the export. Any engine or primary
// write failure is recoverable; only cancellation aborts, since the caller is
// gone either way.
func recoverableRenderFailure(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
