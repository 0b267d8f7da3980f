package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uca-platform/uca-api/internal/dto"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
	"github.com/uca-platform/uca-api/pkg/response"
)

type analysisProvider interface {
	GetCourseAnalysis(ctx context.Context, courseID string) (*dto.CourseAnalysisResponse, error)
	ExportCharts(ctx context.Context, courseID string, req dto.ChartExportRequest) (*dto.ChartExportResponse, error)
	Snapshot(ctx context.Context, courseID string) (*dto.CourseSnapshot, error)
}

type snapshotImporter interface {
	Import(ctx context.Context, courseID string, snap dto.CourseSnapshot) (*dto.ImportSnapshotResult, error)
}

// AnalysisHandler exposes statistics and chart export endpoints.
type AnalysisHandler struct {
	analysis  analysisProvider
	snapshots snapshotImporter
}

// NewAnalysisHandler constructs handler.
func NewAnalysisHandler(analysis analysisProvider, snapshots snapshotImporter) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, snapshots: snapshots}
}

// CourseAnalysis godoc
// @Summary Computed statistics for a course
// @Tags Analysis
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/analysis [get]
func (h *AnalysisHandler) CourseAnalysis(c *gin.Context) {
	analysis, err := h.analysis.GetCourseAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis, nil)
}

// ExportCharts godoc
// @Summary Render and persist chart artifacts for a course
// @Tags Analysis
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body dto.ChartExportRequest true "Export options"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/charts [post]
func (h *AnalysisHandler) ExportCharts(c *gin.Context) {
	var req dto.ChartExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request"))
		return
	}
	result, err := h.analysis.ExportCharts(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Snapshot godoc
// @Summary Full JSON snapshot of a course's assessment state
// @Tags Analysis
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/snapshot [get]
func (h *AnalysisHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.analysis.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// ImportSnapshot godoc
// @Summary Replace a course's stored data from an exported snapshot
// @Tags Analysis
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body dto.CourseSnapshot true "Course snapshot"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/snapshot [put]
func (h *AnalysisHandler) ImportSnapshot(c *gin.Context) {
	var snap dto.CourseSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid snapshot payload"))
		return
	}
	result, err := h.snapshots.Import(c.Request.Context(), c.Param("id"), snap)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
