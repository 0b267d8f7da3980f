package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	"github.com/uca-platform/uca-api/internal/service"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

type reportServiceMock struct {
	createResp  *dto.ReportJobResponse
	createErr   error
	statusResp  *dto.ReportStatusResponse
	statusErr   error
	download    *service.ReportDownload
	downloadErr error
}

func (m *reportServiceMock) CreateJob(ctx context.Context, courseID string, req dto.CreateReportRequest) (*dto.ReportJobResponse, error) {
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) Download(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func TestReportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		createResp: &dto.ReportJobResponse{ID: "job-1", Status: models.ReportStatusQueued},
	}
	h := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateReportRequest{CourseID: "course-1", Format: models.ReportFormatPDF})
	c, w := newGinContext(http.MethodPost, "/reports", payload)

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "job-1")
}

func TestReportHandlerCreateInvalidWeights(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		createErr: appErrors.Clone(appErrors.ErrInvalidWeights, "weights sum to 95.00"),
	}
	h := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateReportRequest{CourseID: "course-1", Format: models.ReportFormatPDF})
	c, w := newGinContext(http.MethodPost, "/reports", payload)

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "INVALID_WEIGHTS")
}

func TestReportHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		statusResp: &dto.ReportStatusResponse{ID: "job-1", Status: models.ReportStatusFinished, Progress: 100},
	}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	h.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "FINISHED")
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "report*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Section,Composite\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &reportServiceMock{
		download: &service.ReportDownload{
			File:     file,
			Filename: "report_course-1_job-1.csv",
			Format:   models.ReportFormatCSV,
		},
	}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "report_course-1_job-1.csv")
}

func TestReportHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		downloadErr: appErrors.Clone(appErrors.ErrValidation, "invalid download token"),
	}
	h := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	h.Download(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
