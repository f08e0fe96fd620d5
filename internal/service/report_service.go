package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/export"
)

// Report view messages.
const (
	MsgSerializerLoading = "Excel library is loading, please try again in a moment."
	MsgNoMatchingRecords = "No students match the selected filters. Cannot generate an empty report."
)

type reportSource interface {
	Students(ctx context.Context) ([]models.Record, error)
	Courses(ctx context.Context) ([]models.CourseSummary, error)
}

type rendererRegistry interface {
	Renderer(format string) (export.Renderer, error)
	States() map[string]export.State
}

type reportMetrics interface {
	ObserveReport(format models.ReportFormat, outcome string, duration time.Duration)
}

// ReportServiceConfig governs cleanup of generated files.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportService filters student records and exports them to a file.
type ReportService struct {
	data      reportSource
	sessions  authFailureHandler
	renderers rendererRegistry
	exporter  *ExportService
	metrics   reportMetrics
	logger    *zap.Logger
	cfg       ReportServiceConfig
	now       func() time.Time
}

// NewReportService constructs the report pipeline.
func NewReportService(data reportSource, sessions authFailureHandler, renderers rendererRegistry, exporter *ExportService, metrics reportMetrics, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &ReportService{
		data:      data,
		sessions:  sessions,
		renderers: renderers,
		exporter:  exporter,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Filter keeps the records matching every active filter. The input is never modified.
func Filter(records []models.Record, filters models.Filters) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if matches(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r models.Record, filters models.Filters) bool {
	for _, f := range filters {
		if !f.Active() {
			continue
		}
		value, ok := r.Value(f.Field)
		if !ok || value != f.Value {
			return false
		}
	}
	return true
}

// Filename is the report file name for req: Student_Report_<course>_<engagement>.<ext>.
func Filename(req models.ReportRequest) string {
	format := req.Format
	if format == "" {
		format = models.ReportFormatXLSX
	}
	parts := []string{"Student_Report"}
	for _, f := range req.Filters() {
		parts = append(parts, sanitizeFilename(f.Value))
	}
	return strings.Join(parts, "_") + "." + string(format)
}

// Generate filters records and renders the report. Nothing is written when no record matches.
func (s *ReportService) Generate(ctx context.Context, records []models.Record, req models.ReportRequest) (*models.ReportResult, error) {
	start := s.now()
	format, err := models.ParseReportFormat(string(req.Format))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	req.Format = format

	renderer, err := s.renderer(format)
	if err != nil {
		s.observe(format, ReportOutcomeNotReady, start)
		return nil, err
	}

	filtered := Filter(records, req.Filters())
	if len(filtered) == 0 {
		s.observe(format, ReportOutcomeEmpty, start)
		return nil, appErrors.Clone(appErrors.ErrNoMatchingRecords, MsgNoMatchingRecords)
	}

	payload, err := renderer.Render(dataset(filtered))
	if err != nil {
		s.observe(format, ReportOutcomeFailed, start)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	result := &models.ReportResult{
		Filename: Filename(req),
		Format:   format,
		Rows:     len(filtered),
		Content:  payload,
	}
	if s.exporter != nil {
		stored, err := s.exporter.Store(result.Filename, payload)
		if err != nil {
			s.observe(format, ReportOutcomeFailed, start)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
		}
		result.ID = stored.ID
		result.RelativePath = stored.RelativePath
		result.URL = stored.URL
		if !stored.ExpiresAt.IsZero() {
			expiresAt := stored.ExpiresAt
			result.ExpiresAt = &expiresAt
		}
	}
	s.observe(format, ReportOutcomeGenerated, start)
	s.logger.Info("report generated",
		zap.String("filename", result.Filename),
		zap.String("format", string(format)),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}

// Export fetches the current student list and generates the report.
func (s *ReportService) Export(ctx context.Context, req models.ReportRequest) (*models.ReportResult, error) {
	format, err := models.ParseReportFormat(string(req.Format))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := s.renderer(format); err != nil {
		return nil, err
	}
	records, err := s.data.Students(ctx)
	if err != nil {
		return nil, checkAuth(ctx, s.sessions, err)
	}
	return s.Generate(ctx, records, req)
}

// FilterOptions lists the selectable courses and engagement levels, each led by "All".
func (s *ReportService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	courses, err := s.data.Courses(ctx)
	if err != nil {
		return nil, checkAuth(ctx, s.sessions, err)
	}
	return filterOptions(courses), nil
}

// View assembles the reports page: filter options and how many students the request matches.
func (s *ReportService) View(ctx context.Context, req models.ReportRequest) (*models.ReportsView, error) {
	courses, err := s.data.Courses(ctx)
	if err != nil {
		return nil, checkAuth(ctx, s.sessions, err)
	}
	students, err := s.data.Students(ctx)
	if err != nil {
		return nil, checkAuth(ctx, s.sessions, err)
	}
	if req.Format == "" {
		req.Format = models.ReportFormatXLSX
	}
	view := &models.ReportsView{
		Options:  *filterOptions(courses),
		Request:  req,
		Matching: len(Filter(students, req.Filters())),
		Total:    len(students),
		Formats:  map[string]string{},
	}
	if s.renderers != nil {
		for format, state := range s.renderers.States() {
			view.Formats[format] = string(state)
		}
	}
	return view, nil
}

// ResolveDownload validates token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	if s.exporter == nil {
		return nil, appErrors.ErrNotFound
	}
	_, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	filename := path.Base(relPath)
	format, _ := models.ParseReportFormat(strings.TrimPrefix(path.Ext(filename), "."))
	return &ReportDownload{
		File:      file,
		Filename:  filename,
		Format:    format,
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically. The returned
// channel is closed once the goroutine exits.
func (s *ReportService) StartCleanup(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.cfg.CleanupInterval <= 0 || s.exporter == nil {
		close(done)
		return done
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
					s.logger.Sugar().Warnw("export cleanup failed", "error", err)
				}
			}
		}
	}()
	return done
}

func (s *ReportService) renderer(format models.ReportFormat) (export.Renderer, error) {
	if s.renderers == nil {
		return nil, appErrors.Clone(appErrors.ErrSerializerNotReady, notReadyMessage(format))
	}
	renderer, err := s.renderers.Renderer(string(format))
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("unsupported report format %q", format))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSerializerNotReady.Code, appErrors.ErrSerializerNotReady.Status, notReadyMessage(format))
	}
	return renderer, nil
}

func (s *ReportService) observe(format models.ReportFormat, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveReport(format, outcome, s.now().Sub(start))
	}
}

func notReadyMessage(format models.ReportFormat) string {
	if format == models.ReportFormatXLSX {
		return MsgSerializerLoading
	}
	return fmt.Sprintf("%s exporter is loading, please try again in a moment.", strings.ToUpper(string(format)))
}

func dataset(records []models.Record) export.Dataset {
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(models.RecordColumns))
		for j, field := range models.RecordColumns {
			row[j], _ = r.Value(field)
		}
		rows[i] = row
	}
	headers := make([]string, len(models.RecordColumns))
	copy(headers, models.RecordColumns)
	return export.Dataset{
		Title:   models.ReportSheetName,
		Sheet:   models.ReportSheetName,
		Headers: headers,
		Rows:    rows,
	}
}

func filterOptions(courses []models.CourseSummary) *models.FilterOptions {
	opts := &models.FilterOptions{
		Courses:     []string{models.FilterAll},
		Engagements: []string{models.FilterAll},
	}
	for _, c := range courses {
		opts.Courses = append(opts.Courses, c.Title)
	}
	for _, level := range models.EngagementLevels {
		opts.Engagements = append(opts.Engagements, string(level))
	}
	return opts
}
