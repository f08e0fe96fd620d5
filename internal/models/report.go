package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportFormat enumerates export serializers.
type ReportFormat string

const (
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ParseReportFormat resolves a format name; empty selects XLSX.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReportFormatXLSX:
		return ReportFormatXLSX, nil
	case ReportFormatCSV:
		return ReportFormatCSV, nil
	case ReportFormatPDF:
		return ReportFormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", raw)
	}
}

// ReportSheetName is the single sheet of a student report.
const ReportSheetName = "Student Report"

// ReportRequest selects the filters and format of a student report.
type ReportRequest struct {
	Course     string       `json:"course" form:"course"`
	Engagement string       `json:"engagement" form:"engagement"`
	Format     ReportFormat `json:"format" form:"format"`
}

// Filters returns the report's filter specs.
func (r ReportRequest) Filters() Filters {
	return ReportFilters(r.Course, r.Engagement)
}

// ReportResult describes a generated artifact.
type ReportResult struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	Format       ReportFormat `json:"format"`
	Rows         int          `json:"rows"`
	RelativePath string       `json:"-"`
	URL          string       `json:"url,omitempty"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
	Content      []byte       `json:"-"`
}

// FilterOptions are the selectable values of the reports view.
type FilterOptions struct {
	Courses     []string `json:"courses"`
	Engagements []string `json:"engagements"`
}
