package models

import "time"

// Column describes one sortable table header.
type Column struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Indicator string `json:"indicator"`
}

// Table is a sorted, display-ready snapshot of a view's rows.
type Table[T any] struct {
	Rows      []T       `json:"rows"`
	Columns   []Column  `json:"columns"`
	Sort      *SortSpec `json:"sort,omitempty"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentRow is a record decorated with its engagement badge.
type StudentRow struct {
	Record
	Badge Badge `json:"badge"`
}

// StudentRows decorates records for display.
func StudentRows(records []Record) []StudentRow {
	rows := make([]StudentRow, len(records))
	for i, r := range records {
		rows[i] = StudentRow{Record: r, Badge: r.Engagement.Badge()}
	}
	return rows
}

// CourseHeaders are the labels of the course overview table.
var CourseHeaders = map[string]string{
	"title":       "Course",
	"students":    "Students",
	"avgProgress": "Avg. Progress (%)",
}

// CourseColumns lists course table columns in display order.
var CourseColumns = []string{"title", "students", "avgProgress"}

// CourseDetail is the student list of one course.
type CourseDetail struct {
	Course   string            `json:"course"`
	Students Table[StudentRow] `json:"students"`
}

// SearchResult is the outcome of a search view load.
type SearchResult struct {
	Query   string            `json:"query"`
	Results Table[StudentRow] `json:"results"`
}

// DashboardView joins the dashboard charts with the top of the student table.
type DashboardView struct {
	Stats         DashboardStats `json:"stats"`
	TopStudents   []StudentRow   `json:"top_students"`
	TotalStudents int            `json:"total_students"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ReportsView backs the reports page: selectable filters and the size of the current selection.
type ReportsView struct {
	Options  FilterOptions     `json:"options"`
	Request  ReportRequest     `json:"request"`
	Matching int               `json:"matching"`
	Total    int               `json:"total"`
	Formats  map[string]string `json:"formats"`
}

// Settings is the read-only settings view.
type Settings struct {
	BackendURL            string            `json:"backend_url"`
	SessionStore          string            `json:"session_store"`
	RedirectAuthenticated bool              `json:"redirect_authenticated"`
	ExportFormats         map[string]string `json:"export_formats"`
	Session               SessionStatus     `json:"session"`
	Metrics               ConsoleMetrics    `json:"metrics"`
}
