package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

type analysisServiceMock struct {
	analysisResp *dto.CourseAnalysisResponse
	analysisErr  error
	exportResp   *dto.ChartExportResponse
	exportErr    error
	snapshotResp *dto.CourseSnapshot
	snapshotErr  error
}

func (m *analysisServiceMock) GetCourseAnalysis(ctx context.Context, courseID string) (*dto.CourseAnalysisResponse, error) {
	return m.analysisResp, m.analysisErr
}

func (m *analysisServiceMock) ExportCharts(ctx context.Context, courseID string, req dto.ChartExportRequest) (*dto.ChartExportResponse, error) {
	return m.exportResp, m.exportErr
}

func (m *analysisServiceMock) Snapshot(ctx context.Context, courseID string) (*dto.CourseSnapshot, error) {
	return m.snapshotResp, m.snapshotErr
}

type snapshotImporterMock struct {
	importResp *dto.ImportSnapshotResult
	importErr  error
	gotCourse  string
}

func (m *snapshotImporterMock) Import(ctx context.Context, courseID string, snap dto.CourseSnapshot) (*dto.ImportSnapshotResult, error) {
	m.gotCourse = courseID
	return m.importResp, m.importErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAnalysisHandlerCourseAnalysis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		analysisResp: &dto.CourseAnalysisResponse{
			Course: models.Course{ID: "course-1", Code: "CS101"},
			Cohort: models.CohortStatistics{Mean: 70.5},
		},
	}
	h := NewAnalysisHandler(mockSvc, &snapshotImporterMock{})

	c, w := newGinContext(http.MethodGet, "/courses/course-1/analysis", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	h.CourseAnalysis(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "CS101")
}

func TestAnalysisHandlerCourseAnalysisNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		analysisErr: appErrors.Clone(appErrors.ErrNotFound, "course not found"),
	}
	h := NewAnalysisHandler(mockSvc, &snapshotImporterMock{})

	c, w := newGinContext(http.MethodGet, "/courses/missing/analysis", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.CourseAnalysis(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalysisHandlerExportCharts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		exportResp: &dto.ChartExportResponse{Artifacts: []models.ExportedArtifact{{
			CourseID:       "course-1",
			ChartKind:      models.ChartKindSectionComparison,
			Representation: models.RepresentationPrimary,
		}}},
	}
	h := NewAnalysisHandler(mockSvc, &snapshotImporterMock{})

	payload, _ := json.Marshal(dto.ChartExportRequest{Kinds: []models.ChartKind{models.ChartKindSectionComparison}})
	c, w := newGinContext(http.MethodPost, "/courses/course-1/charts", payload)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	h.ExportCharts(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "section_comparison")
}

func TestAnalysisHandlerExportChartsEmptySelection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &analysisServiceMock{
		exportErr: appErrors.Clone(appErrors.ErrEmptySelection, ""),
	}
	h := NewAnalysisHandler(mockSvc, &snapshotImporterMock{})

	payload, _ := json.Marshal(dto.ChartExportRequest{})
	c, w := newGinContext(http.MethodPost, "/courses/course-1/charts", payload)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	h.ExportCharts(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "EMPTY_SELECTION")
}

func TestAnalysisHandlerImportSnapshot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	importer := &snapshotImporterMock{
		importResp: &dto.ImportSnapshotResult{CourseID: "course-1", Sections: 2, Records: 6},
	}
	h := NewAnalysisHandler(&analysisServiceMock{}, importer)

	payload, _ := json.Marshal(dto.CourseSnapshot{
		Course:  models.Course{ID: "course-1", Name: "Data Structures", Code: "CS101"},
		Weights: models.CategoryWeights{models.CategoryQuiz: 40, models.CategoryFinal: 60},
	})
	c, w := newGinContext(http.MethodPut, "/courses/course-1/snapshot", payload)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	h.ImportSnapshot(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "course-1", importer.gotCourse)
	require.Contains(t, w.Body.String(), `"sections":2`)
}

func TestAnalysisHandlerImportSnapshotInvalidWeights(t *testing.T) {
	gin.SetMode(gin.TestMode)
	importer := &snapshotImporterMock{
		importErr: appErrors.Clone(appErrors.ErrInvalidWeights, "invalid weight configuration"),
	}
	h := NewAnalysisHandler(&analysisServiceMock{}, importer)

	payload, _ := json.Marshal(dto.CourseSnapshot{Course: models.Course{ID: "course-1"}})
	c, w := newGinContext(http.MethodPut, "/courses/course-1/snapshot", payload)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	h.ImportSnapshot(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_WEIGHTS")
}
