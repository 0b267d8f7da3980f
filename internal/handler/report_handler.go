package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	"github.com/uca-platform/uca-api/internal/service"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
	"github.com/uca-platform/uca-api/pkg/response"
)

type reportProvider interface {
	CreateJob(ctx context.Context, courseID string, req dto.CreateReportRequest) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error)
	Download(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes report job endpoints.
type ReportHandler struct {
	reports reportProvider
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportProvider) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create godoc
// @Summary Queue report generation
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body dto.CreateReportRequest true "Report options"
// @Success 201 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request"))
		return
	}
	job, err := h.reports.CreateJob(c.Request.Context(), req.CourseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

// Status godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	status, err := h.reports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished report via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.reports.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "application/pdf"
	if download.Format == models.ReportFormatCSV {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", contentType)
	c.File(download.File.Name())
}
