package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/export"
	"github.com/noah-isme/elearning-analytics-console/pkg/storage"
)

func readyRegistry(t *testing.T) *export.Registry {
	t.Helper()
	reg := export.NewRegistry(nil, export.NewXLSXExporter(models.FieldProgress, models.FieldScore, models.FieldTimeSpent), export.NewCSVExporter(), export.NewPDFExporter())
	reg.Load(context.Background())
	reg.Wait()
	return reg
}

func newExporter(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	files, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(files, signer, ExportConfig{}, nil), files
}

func TestFilter(t *testing.T) {
	records := sampleRecords()

	require.Equal(t, records, Filter(records, nil))
	require.Equal(t, records, Filter(records, models.ReportFilters("All", "All")))

	math := Filter(records, models.ReportFilters("Math", "All"))
	require.Len(t, math, 2)

	mathHigh := Filter(records, models.ReportFilters("Math", "High"))
	require.Len(t, mathHigh, 1)
	require.Equal(t, models.RecordID("10"), mathHigh[0].ID)

	byScore := Filter(records, models.Filters{{Field: models.FieldScore, Value: "95"}})
	require.Len(t, byScore, 1)

	require.Empty(t, Filter(records, models.Filters{{Field: "unknown", Value: "x"}}))
	require.Equal(t, sampleRecords(), records)
}

func TestFilterMatchesIntegralValues(t *testing.T) {
	records := []models.Record{{ID: "1", Course: "A", Progress: 50, Score: 87.125, Engagement: models.EngagementHigh}}

	require.Len(t, Filter(records, models.Filters{{Field: models.FieldProgress, Value: "50"}}), 1)
	require.Len(t, Filter(records, models.Filters{{Field: models.FieldScore, Value: "87.125"}}), 1)
}

func TestReportServiceExportsExactValues(t *testing.T) {
	exporter, _ := newExporter(t)
	svc := NewReportService(nil, nil, readyRegistry(t), exporter, nil, nil, ReportServiceConfig{})
	records := []models.Record{
		{ID: "1", Course: "A", Progress: 33.3333, Score: 87.125, TimeSpent: 1.005, Engagement: models.EngagementHigh},
	}

	result, err := svc.Generate(context.Background(), records, models.ReportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(result.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"1", "A", "33.3333", "87.125", "1.005", "High"}, rows[1])

	result, err = svc.Generate(context.Background(), records, models.ReportRequest{Format: models.ReportFormatXLSX})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	for cell, want := range map[string]float64{"C2": 33.3333, "D2": 87.125, "E2": 1.005} {
		raw, err := f.GetCellValue(models.ReportSheetName, cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		got, err := strconv.ParseFloat(raw, 64)
		require.NoError(t, err)
		require.Equal(t, want, got, cell)
	}
}

func TestFilename(t *testing.T) {
	require.Equal(t, "Student_Report_All_All.xlsx", Filename(models.ReportRequest{}))
	require.Equal(t, "Student_Report_Data_Science_High.csv", Filename(models.ReportRequest{Course: "Data Science", Engagement: "High", Format: models.ReportFormatCSV}))
	require.Equal(t, "Student_Report_A-B_All.pdf", Filename(models.ReportRequest{Course: "A/B", Format: models.ReportFormatPDF}))
}

func TestReportServiceGenerateXLSX(t *testing.T) {
	exporter, files := newExporter(t)
	metrics := NewMetricsService()
	svc := NewReportService(nil, nil, readyRegistry(t), exporter, metrics, nil, ReportServiceConfig{})

	result, err := svc.Generate(context.Background(), sampleRecords(), models.ReportRequest{Course: "Math", Engagement: models.FilterAll})
	require.NoError(t, err)
	require.Equal(t, "Student_Report_Math_All.xlsx", result.Filename)
	require.Equal(t, models.ReportFormatXLSX, result.Format)
	require.Equal(t, 2, result.Rows)
	require.NotEmpty(t, result.URL)
	require.NotNil(t, result.ExpiresAt)
	require.FileExists(t, files.Path(result.RelativePath))

	f, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	require.Equal(t, []string{models.ReportSheetName}, f.GetSheetList())
	rows, err := f.GetRows(models.ReportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, models.RecordColumns, rows[0])
	require.Equal(t, []string{"3", "Math", "40", "71.5", "2", "Low"}, rows[1])

	require.Equal(t, uint64(1), metrics.Snapshot().ReportsGenerated)
}

func TestReportServiceEmptySelectionWritesNothing(t *testing.T) {
	exporter, files := newExporter(t)
	metrics := NewMetricsService()
	svc := NewReportService(nil, nil, readyRegistry(t), exporter, metrics, nil, ReportServiceConfig{})

	result, err := svc.Generate(context.Background(), sampleRecords(), models.ReportRequest{Course: "Art", Engagement: "High"})
	require.Nil(t, result)
	require.ErrorIs(t, err, appErrors.ErrNoMatchingRecords)
	require.Equal(t, MsgNoMatchingRecords, appErrors.FromError(err).Message)

	deleted, err := files.CleanupOlderThan(-time.Hour)
	require.NoError(t, err)
	require.Empty(t, deleted)
	require.Equal(t, uint64(1), metrics.Snapshot().ReportsRejected)
}

func TestReportServiceSerializerNotReady(t *testing.T) {
	exporter, _ := newExporter(t)
	reg := export.NewRegistry(nil, export.NewXLSXExporter(), export.NewCSVExporter())
	svc := NewReportService(nil, nil, reg, exporter, nil, nil, ReportServiceConfig{})

	_, err := svc.Generate(context.Background(), sampleRecords(), models.ReportRequest{})
	require.ErrorIs(t, err, appErrors.ErrSerializerNotReady)
	require.Equal(t, MsgSerializerLoading, appErrors.FromError(err).Message)

	_, err = svc.Generate(context.Background(), nil, models.ReportRequest{Format: models.ReportFormatCSV})
	require.ErrorIs(t, err, appErrors.ErrSerializerNotReady)

	_, err = svc.Generate(context.Background(), sampleRecords(), models.ReportRequest{Format: models.ReportFormatPDF})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Generate(context.Background(), sampleRecords(), models.ReportRequest{Format: "docx"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceExportCSVAndDownload(t *testing.T) {
	exporter, _ := newExporter(t)
	backend := &fakeBackend{students: sampleRecords()}
	sessions, _ := authenticatedSession(t)
	svc := NewReportService(backend, sessions, readyRegistry(t), exporter, nil, nil, ReportServiceConfig{})

	result, err := svc.Export(context.Background(), models.ReportRequest{Engagement: "High", Format: models.ReportFormatCSV})
	require.NoError(t, err)
	require.Equal(t, "Student_Report_All_High.csv", result.Filename)
	require.Equal(t, "id,course,progress,score,timeSpent,PredictedEngagement\n1,Physics,90.00,95.00,12.00,High\n10,Math,75.00,88.00,7.50,High\n", string(result.Content))

	token := filepath.Base(result.URL)
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck
	require.Equal(t, result.Filename, download.Filename)
	require.Equal(t, models.ReportFormatCSV, download.Format)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	require.Equal(t, result.Content, body)

	_, err = svc.ResolveDownload(context.Background(), token+"x")
	require.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestReportServiceExportAuthorizationFailure(t *testing.T) {
	exporter, _ := newExporter(t)
	backend := &fakeBackend{err: backendError(http.StatusUnauthorized, "expired")}
	sessions, _ := authenticatedSession(t)
	svc := NewReportService(backend, sessions, readyRegistry(t), exporter, nil, nil, ReportServiceConfig{})

	_, err := svc.Export(context.Background(), models.ReportRequest{})
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
	require.False(t, sessions.Authenticated())
}

func TestReportServiceViewAndOptions(t *testing.T) {
	backend := &fakeBackend{students: sampleRecords(), courses: []models.CourseSummary{{Title: "Math"}, {Title: "Physics"}}}
	sessions, _ := authenticatedSession(t)
	svc := NewReportService(backend, sessions, readyRegistry(t), nil, nil, nil, ReportServiceConfig{})

	opts, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"All", "Math", "Physics"}, opts.Courses)
	require.Equal(t, []string{"All", "High", "Medium", "Low"}, opts.Engagements)

	view, err := svc.View(context.Background(), models.ReportRequest{Course: "Math"})
	require.NoError(t, err)
	require.Equal(t, 2, view.Matching)
	require.Equal(t, 4, view.Total)
	require.Equal(t, models.ReportFormatXLSX, view.Request.Format)
	require.Equal(t, "ready", view.Formats[export.FormatXLSX])
}

func TestReportServiceGenerateWithoutExporterKeepsContent(t *testing.T) {
	svc := NewReportService(nil, nil, readyRegistry(t), nil, nil, nil, ReportServiceConfig{})
	result, err := svc.Generate(context.Background(), sampleRecords(), models.ReportRequest{Format: models.ReportFormatPDF})
	require.NoError(t, err)
	require.Empty(t, result.URL)
	require.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestReportServiceStartCleanupStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	exporter, files := newExporter(t)
	rel, err := files.Save("old/report.csv", []byte("x"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(files.Path(rel), past, past))

	svc := NewReportService(nil, nil, nil, exporter, nil, nil, ReportServiceConfig{ResultTTL: time.Hour, CleanupInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := svc.StartCleanup(ctx)

	require.Eventually(t, func() bool {
		_, err := os.Stat(files.Path(rel))
		return os.IsNotExist(err)
	}, timeout, tick)
	cancel()
	<-done
}
