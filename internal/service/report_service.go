package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	"github.com/uca-platform/uca-api/internal/repository"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
	"github.com/uca-platform/uca-api/pkg/export"
	"github.com/uca-platform/uca-api/pkg/jobs"
	"github.com/uca-platform/uca-api/pkg/storage"
)

// placeholderNote is the text substituted for a chart the assembler cannot
// embed into a static document.
const placeholderNote = "chart unavailable - static rendering engine not present"

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// artifactReader reads persisted chart artifact bytes for embedding.
type artifactReader interface {
	Read(key string) ([]byte, error)
}

// reportStore persists rendered report files.
type reportStore interface {
	Write(key string, data []byte) error
	Open(key string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ReportServiceConfig governs job processing and cleanup.
type ReportServiceConfig struct {
	ResultTTL        time.Duration
	CleanupInterval  time.Duration
	DownloadBasePath string
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// ReportService assembles report documents and manages the asynchronous
// generation job lifecycle around them.
type ReportService struct {
	repo      reportJobStore
	queue     jobDispatcher
	analysis  *AnalysisService
	artifacts *ArtifactService
	files     artifactReader
	reports   reportStore
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(
	repo reportJobStore,
	queue jobDispatcher,
	analysis *AnalysisService,
	artifacts *ArtifactService,
	files artifactReader,
	reports reportStore,
	signer *storage.SignedURLSigner,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ReportServiceConfig,
) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.DownloadBasePath == "" {
		cfg.DownloadBasePath = "/api/v1/reports/download"
	}
	return &ReportService{
		repo:      repo,
		queue:     queue,
		analysis:  analysis,
		artifacts: artifacts,
		files:     files,
		reports:   reports,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, persists the job row and enqueues
// processing.
func (s *ReportService) CreateJob(ctx context.Context, courseID string, req dto.CreateReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}
	if _, err := s.analysis.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}

	job := &models.ReportJob{
		CourseID: courseID,
		Params: models.ReportJobParams{
			Format:              req.Format,
			Toggles:             req.Toggles,
			IncludeDistribution: req.IncludeDistribution,
			RegenerateArtifacts: req.RegenerateArtifacts,
			Title:               req.Title,
		},
		Status: models.ReportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "report"}); err != nil {
		s.failJob(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to clients.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return &dto.ReportStatusResponse{
		ID:           job.ID,
		CourseID:     job.CourseID,
		Status:       job.Status,
		Progress:     job.Progress,
		ResultURL:    job.ResultURL,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
	}, nil
}

// HandleJob is the queue handler: it drives one job from QUEUED to a
// terminal status.
func (s *ReportService) HandleJob(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", queued.ID, err)
	}

	s.updateJob(ctx, job.ID, models.ReportStatusProcessing, 10, nil)

	relPath, err := s.generate(ctx, job)
	if err != nil {
		s.logger.Error("report generation failed", zap.String("job_id", job.ID), zap.Error(err))
		s.failJob(ctx, job.ID, err.Error())
		s.metrics.RecordReportJob(string(models.ReportStatusFailed))
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(ctx, job.ID, "failed to sign download url")
		s.metrics.RecordReportJob(string(models.ReportStatusFailed))
		return fmt.Errorf("sign report url: %w", err)
	}
	resultURL := s.cfg.DownloadBasePath + "/" + token

	now := time.Now().UTC()
	status := models.ReportStatusFinished
	progress := 100
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finalize report job %s: %w", job.ID, err)
	}
	s.metrics.RecordReportJob(string(models.ReportStatusFinished))
	return nil
}

// generate produces the report file and returns its storage-relative path.
func (s *ReportService) generate(ctx context.Context, job *models.ReportJob) (string, error) {
	data, err := s.analysis.loadCourse(ctx, job.CourseID)
	if err != nil {
		return "", err
	}
	cohort, sectionStats, err := s.analysis.stats.ComputeCohortStatistics(job.CourseID, data.sections, *data.weights)
	if err != nil {
		return "", err
	}
	s.updateJob(ctx, job.ID, models.ReportStatusProcessing, 30, nil)

	var payload []byte
	ext := ".csv"
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(buildCSVDataset(sectionStats, cohort))
		if err != nil {
			return "", fmt.Errorf("render csv report: %w", err)
		}
	case models.ReportFormatPDF:
		ext = ".pdf"
		doc, images, buildErr := s.buildDocument(ctx, job, data, sectionStats, cohort)
		if buildErr != nil {
			return "", buildErr
		}
		s.updateJob(ctx, job.ID, models.ReportStatusProcessing, 70, nil)
		payload, err = s.pdf.RenderDocument(*doc, images)
		if err != nil {
			return "", fmt.Errorf("render pdf report: %w", err)
		}
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", job.Params.Format))
	}

	relPath := job.ID + ext
	if err := s.reports.Write(relPath, payload); err != nil {
		return "", fmt.Errorf("persist report file: %w", err)
	}
	s.updateJob(ctx, job.ID, models.ReportStatusProcessing, 90, nil)
	return relPath, nil
}

// buildDocument assembles the PDF document: it secures the chart artifacts
// first (regenerating on request or when absent) and then assembles sections
// in the fixed order.
func (s *ReportService) buildDocument(ctx context.Context, job *models.ReportJob, data *courseData, sectionStats []models.SectionStatistics, cohort *models.CohortStatistics) (*models.ReportDocument, map[string][]byte, error) {
	selection, err := ResolveToggles(job.Params.Toggles)
	if err != nil {
		return nil, nil, err
	}

	kinds := []models.ChartKind{models.ChartKindSectionComparison, models.ChartKindWeightedComposite}
	if job.Params.IncludeDistribution {
		kinds = append(kinds, models.ChartKindGradeDistribution)
	}

	charts := make(map[models.ChartKind]*models.ExportedArtifact, len(kinds))
	for _, kind := range kinds {
		if !job.Params.RegenerateArtifacts {
			if existing := s.artifacts.Lookup(job.CourseID, kind); existing != nil {
				charts[kind] = existing
				continue
			}
		}
		spec, specErr := s.analysis.buildSpec(ctx, kind, data, sectionStats, selection)
		if specErr != nil {
			return nil, nil, specErr
		}
		artifact, exportErr := s.artifacts.Export(ctx, spec, job.CourseID, kind)
		if exportErr != nil {
			// A failed export loses that chart only; the assembler will
			// substitute a placeholder and the report still ships.
			s.logger.Warn("report chart export failed, substituting placeholder",
				zap.String("job_id", job.ID),
				zap.String("chart_kind", string(kind)),
				zap.Error(exportErr))
			continue
		}
		charts[kind] = artifact
	}

	var distRows []models.GradeDistributionRow
	if job.Params.IncludeDistribution {
		rows, distErr := s.analysis.distributions.ListByCourse(ctx, job.CourseID)
		if distErr != nil {
			return nil, nil, appErrors.Wrap(distErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade distribution")
		}
		distRows = rows
	}

	doc := s.Assemble(data.course, data.weights, sectionStats, cohort, charts, data.sections, distRows, job.Params)

	images := make(map[string][]byte)
	for _, artifact := range charts {
		if artifact == nil || artifact.Representation != models.RepresentationPrimary {
			continue
		}
		img, readErr := s.files.Read(artifact.StoragePath)
		if readErr != nil {
			s.logger.Warn("failed to read chart artifact for embedding",
				zap.String("path", artifact.StoragePath), zap.Error(readErr))
			continue
		}
		images[artifact.StoragePath] = img
	}
	return doc, images, nil
}

// Assemble combines statistics and exported artifacts into the ordered report
// document: course summary, section statistics, section comparison, weighted
// composite, grade distribution (when supplied), cohort summary. The order is
// fixed regardless of input iteration order. A chart that only exists in its
// markup fallback representation (or not at all) becomes an explicit
// placeholder; the tables are present either way, so the report degrades to
// tables-only but never to empty.
func (s *ReportService) Assemble(
	course *models.Course,
	weights *models.WeightConfiguration,
	sectionStats []models.SectionStatistics,
	cohort *models.CohortStatistics,
	charts map[models.ChartKind]*models.ExportedArtifact,
	sections []models.Section,
	distRows []models.GradeDistributionRow,
	params models.ReportJobParams,
) *models.ReportDocument {
	title := params.Title
	if title == "" {
		title = fmt.Sprintf("%s Assessment Report", course.Code)
	}

	doc := &models.ReportDocument{
		CourseID:    course.ID,
		Title:       title,
		GeneratedAt: time.Now().UTC(),
	}

	doc.Sections = append(doc.Sections, models.ReportSection{
		Kind:  models.ReportSectionSummary,
		Title: "Course Information",
		Lines: courseSummaryLines(course, weights, len(sectionStats)),
	})

	doc.Sections = append(doc.Sections, models.ReportSection{
		Kind:  models.ReportSectionTable,
		Title: "Section Statistics",
		Table: buildSectionTable(sectionStats),
	})

	doc.Sections = append(doc.Sections, chartSection("Section Comparison", charts[models.ChartKindSectionComparison]))
	doc.Sections = append(doc.Sections, chartSection("Weighted Composite", charts[models.ChartKindWeightedComposite]))

	if len(distRows) > 0 || params.IncludeDistribution {
		doc.Sections = append(doc.Sections, models.ReportSection{
			Kind:  models.ReportSectionTable,
			Title: "Grade Distribution",
			Table: buildDistributionTable(sections, distRows),
		})
		doc.Sections = append(doc.Sections, chartSection("Grade Distribution Chart", charts[models.ChartKindGradeDistribution]))
	}

	doc.Sections = append(doc.Sections, models.ReportSection{
		Kind:  models.ReportSectionTable,
		Title: "Cohort Summary",
		Table: buildCohortTable(cohort),
	})

	return doc
}

// chartSection embeds a primary artifact or substitutes the explicit
// placeholder. Silently dropping a chart is a contract violation.
func chartSection(title string, artifact *models.ExportedArtifact) models.ReportSection {
	if artifact != nil && artifact.Representation == models.RepresentationPrimary {
		return models.ReportSection{
			Kind:     models.ReportSectionChart,
			Title:    title,
			Artifact: artifact,
		}
	}
	section := models.ReportSection{
		Kind:  models.ReportSectionPlaceholder,
		Title: title,
		Note:  placeholderNote,
	}
	section.Artifact = artifact
	return section
}

func courseSummaryLines(course *models.Course, weights *models.WeightConfiguration, sectionCount int) []string {
	lines := []string{
		fmt.Sprintf("Course: %s (%s)", course.Name, course.Code),
		fmt.Sprintf("Term: %s", course.TermSemester),
		fmt.Sprintf("Coordinator: %s", course.Coordinator),
		fmt.Sprintf("Sections: %d", sectionCount),
	}
	weightsLine := "Weights:"
	for _, category := range models.Categories {
		w := weights.Weight(category)
		if w <= 0 {
			continue
		}
		weightsLine += fmt.Sprintf(" %s %s%%", category.DisplayName(), formatScore(w))
	}
	return append(lines, weightsLine)
}

func buildSectionTable(stats []models.SectionStatistics) *models.ReportTable {
	headers := []string{"Section", "Instructor", "Students"}
	for _, category := range models.Categories {
		headers = append(headers, category.DisplayName())
	}
	headers = append(headers, "Composite")

	table := &models.ReportTable{Headers: headers}
	for _, st := range stats {
		row := []string{
			models.Section{SectionNumber: st.SectionNumber}.Label(),
			st.Instructor,
			strconv.Itoa(st.TotalStudents),
		}
		for _, category := range models.Categories {
			if avg, ok := st.CategoryAvg[category]; ok {
				row = append(row, formatScore(avg))
			} else {
				row = append(row, "-")
			}
		}
		composite := formatScore(st.Composite)
		if st.MissingData {
			composite = "0.0 (no data)"
		}
		row = append(row, composite)
		table.Rows = append(table.Rows, row)
	}
	return table
}

func buildCohortTable(cohort *models.CohortStatistics) *models.ReportTable {
	return &models.ReportTable{
		Headers: []string{"Sections", "Mean", "Std Dev", "Min", "Max"},
		Rows: [][]string{{
			strconv.Itoa(cohort.SectionCount),
			formatScore(cohort.Mean),
			formatScore(cohort.StdDev),
			formatScore(cohort.Min),
			formatScore(cohort.Max),
		}},
	}
}

func buildDistributionTable(sections []models.Section, rows []models.GradeDistributionRow) *models.ReportTable {
	table := &models.ReportTable{Headers: []string{"Section", "Grade", "Range", "Students"}}
	labels := make(map[string]string, len(sections))
	for _, section := range sections {
		labels[section.ID] = section.Label()
	}
	ranges := make(map[string]string, len(models.DefaultGradeBands))
	for _, band := range models.DefaultGradeBands {
		ranges[band.Grade] = band.RangeDisplay()
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			labels[row.SectionID],
			row.Grade,
			ranges[row.Grade],
			strconv.Itoa(row.Count),
		})
	}
	return table
}

func buildCSVDataset(stats []models.SectionStatistics, cohort *models.CohortStatistics) export.Dataset {
	headers := []string{"Section", "Instructor", "Students"}
	for _, category := range models.Categories {
		headers = append(headers, category.DisplayName())
	}
	headers = append(headers, "Composite")

	dataset := export.Dataset{Headers: headers}
	for _, st := range stats {
		row := []string{
			models.Section{SectionNumber: st.SectionNumber}.Label(),
			st.Instructor,
			strconv.Itoa(st.TotalStudents),
		}
		for _, category := range models.Categories {
			if avg, ok := st.CategoryAvg[category]; ok {
				row = append(row, formatScore(avg))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, formatScore(st.Composite))
		dataset.Rows = append(dataset.Rows, row)
	}
	cohortRow := make([]string, len(headers))
	cohortRow[0] = "Cohort Mean"
	cohortRow[len(headers)-1] = formatScore(cohort.Mean)
	dataset.Rows = append(dataset.Rows, cohortRow)
	return dataset
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Download resolves a signed token into an open report file.
func (s *ReportService) Download(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report not finished")
	}
	file, err := s.reports.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer available")
	}
	return &ReportDownload{
		File:     file,
		Filename: fmt.Sprintf("report_%s_%s", job.CourseID, relPath),
		Format:   job.Params.Format,
	}, nil
}

// RecoverQueued re-enqueues jobs left in QUEUED state by a previous process.
func (s *ReportService) RecoverQueued(ctx context.Context) {
	queued, err := s.repo.ListQueued(ctx, 0)
	if err != nil {
		s.logger.Warn("failed to list queued report jobs", zap.Error(err))
		return
	}
	for _, job := range queued {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "report"}); err != nil {
			s.logger.Warn("failed to re-enqueue report job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(queued) > 0 {
		s.logger.Info("recovered queued report jobs", zap.Int("count", len(queued)))
	}
}

// StartCleanup periodically removes report files older than the result TTL.
// It blocks until the context is cancelled; run it on its own goroutine.
func (s *ReportService) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.reports.CleanupOlderThan(s.cfg.ResultTTL)
			if err != nil {
				s.logger.Warn("report cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("cleaned up expired report files", zap.Int("count", len(removed)))
			}
		}
	}
}

func (s *ReportService) updateJob(ctx context.Context, id string, status models.ReportStatus, progress int, errorMessage *string) {
	if err := s.repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: errorMessage,
	}); err != nil {
		s.logger.Warn("failed to update report job", zap.String("job_id", id), zap.Error(err))
	}
}

func (s *ReportService) failJob(ctx context.Context, id string, message string) {
	now := time.Now().UTC()
	status := models.ReportStatusFailed
	progress := 100
	if err := s.repo.Update(ctx, id, repository.UpdateReportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark report job failed", zap.String("job_id", id), zap.Error(err))
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
