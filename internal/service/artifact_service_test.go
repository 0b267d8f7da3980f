package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

type fakeEngine struct {
	imageErr  error
	markupErr error
	images    int
	markups   int
}

func (e *fakeEngine) RenderToImage(ctx context.Context, spec models.ChartSpecification) ([]byte, error) {
	e.images++
	if e.imageErr != nil {
		return nil, e.imageErr
	}
	return []byte("png:" + spec.Title), nil
}

func (e *fakeEngine) RenderToMarkup(ctx context.Context, spec models.ChartSpecification) ([]byte, error) {
	e.markups++
	if e.markupErr != nil {
		return nil, e.markupErr
	}
	return []byte("html:" + spec.Title), nil
}

type fakeStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: map[string][]byte{}}
}

func (s *fakeStore) Write(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.files[key] = data
	return nil
}

func (s *fakeStore) Exists(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[key]
	return ok, nil
}

func (s *fakeStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func newArtifactService(engine *fakeEngine, store *fakeStore) *ArtifactService {
	return NewArtifactService(engine, store, nil, nil, 5*time.Second)
}

func TestExportPersistsPrimaryRepresentation(t *testing.T) {
	engine := &fakeEngine{}
	store := newFakeStore()
	svc := newArtifactService(engine, store)

	artifact, err := svc.Export(context.Background(), models.ChartSpecification{Title: "t"}, "course-1", models.ChartKindSectionComparison)
	require.NoError(t, err)

	assert.Equal(t, models.RepresentationPrimary, artifact.Representation)
	assert.Equal(t, "charts/course_course-1_section_comparison.png", artifact.StoragePath)
	assert.Equal(t, int64(len("png:t")), artifact.ByteSize)
	assert.Equal(t, 1, store.count())
	assert.Zero(t, engine.markups)
}

func TestExportFallsBackWhenRasterUnavailable(t *testing.T) {
	engine := &fakeEngine{imageErr: appErrors.Clone(appErrors.ErrRenderUnavailable, "")}
	store := newFakeStore()
	svc := newArtifactService(engine, store)

	artifact, err := svc.Export(context.Background(), models.ChartSpecification{Title: "t"}, "course-1", models.ChartKindWeightedComposite)
	require.NoError(t, err)

	assert.Equal(t, models.RepresentationFallback, artifact.Representation)
	assert.Equal(t, "charts/course_course-1_weighted_composite.html", artifact.StoragePath)
	assert.Equal(t, 1, store.count())
}

func TestExportTwiceLeavesExactlyOneArtifact(t *testing.T) {
	engine := &fakeEngine{}
	store := newFakeStore()
	svc := newArtifactService(engine, store)
	ctx := context.Background()
	kind := models.ChartKindSectionComparison

	first, err := svc.Export(ctx, models.ChartSpecification{Title: "first"}, "course-1", kind)
	require.NoError(t, err)
	require.Equal(t, models.RepresentationPrimary, first.Representation)

	// Raster engine goes away between calls; the second export must replace
	// the stale PNG with the fallback HTML, never leave both.
	engine.imageErr = appErrors.Clone(appErrors.ErrRenderUnavailable, "")
	second, err := svc.Export(ctx, models.ChartSpecification{Title: "second"}, "course-1", kind)
	require.NoError(t, err)
	require.Equal(t, models.RepresentationFallback, second.Representation)

	assert.Equal(t, 1, store.count())
	assert.Equal(t, []byte("html:second"), store.files[second.StoragePath])

	found := svc.Lookup("course-1", kind)
	require.NotNil(t, found)
	assert.Equal(t, models.RepresentationFallback, found.Representation)
}

func TestExportFailsWhenBothWritesFail(t *testing.T) {
	engine := &fakeEngine{}
	store := newFakeStore()
	store.writeErr = fmt.Errorf("disk full")
	svc := newArtifactService(engine, store)

	_, err := svc.Export(context.Background(), models.ChartSpecification{Title: "t"}, "course-1", models.ChartKindSectionComparison)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrArtifactWrite)
	assert.Zero(t, store.count())
}

func TestExportRejectsUnknownKind(t *testing.T) {
	svc := newArtifactService(&fakeEngine{}, newFakeStore())
	_, err := svc.Export(context.Background(), models.ChartSpecification{}, "course-1", models.ChartKind("pie"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportConcurrentSameKeySerializes(t *testing.T) {
	engine := &fakeEngine{}
	store := newFakeStore()
	svc := newArtifactService(engine, store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Export(context.Background(), models.ChartSpecification{Title: fmt.Sprintf("t%d", i)}, "course-1", models.ChartKindSectionComparison)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, store.count())
}
