package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func headerLine(columns []models.Column) string {
	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = strings.TrimSpace(col.Label + " " + col.Indicator)
	}
	return strings.Join(labels, "\t")
}

func printStudents(w io.Writer, table *models.Table[models.StudentRow]) {
	if table == nil || len(table.Rows) == 0 {
		fmt.Fprintln(w, "No students found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, headerLine(table.Columns))
	for _, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cells[i], _ = row.Value(col.Key)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d students\n", table.Total)
}

func printCourses(w io.Writer, table *models.Table[models.CourseSummary]) {
	if table == nil || len(table.Rows) == 0 {
		fmt.Fprintln(w, "No courses found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, headerLine(table.Columns))
	for _, course := range table.Rows {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\n", course.Title, course.Students, course.AvgProgress)
	}
	_ = tw.Flush()
}

func printDashboard(w io.Writer, view *models.DashboardView) {
	charts := []struct {
		title string
		data  models.ChartBuckets
	}{
		{"Engagement", view.Stats.Engagement},
		{"Completion", view.Stats.Completion},
		{"Average score", view.Stats.AverageScores},
		{"Average time (hrs)", view.Stats.AverageTime},
	}
	for _, chart := range charts {
		fmt.Fprintf(w, "%s\n", chart.title)
		tw := newTable(w)
		for i, label := range chart.data.Labels {
			var value float64
			if i < len(chart.data.Values) {
				value = chart.data.Values[i]
			}
			fmt.Fprintf(tw, "  %s\t%.2f\n", label, value)
		}
		_ = tw.Flush()
	}
	fmt.Fprintf(w, "\nTop students (%d of %d)\n", len(view.TopStudents), view.TotalStudents)
	printStudents(w, &models.Table[models.StudentRow]{
		Rows:    view.TopStudents,
		Columns: studentColumns(),
		Total:   view.TotalStudents,
	})
}

func studentColumns() []models.Column {
	columns := make([]models.Column, len(models.RecordColumns))
	for i, key := range models.RecordColumns {
		columns[i] = models.Column{Key: key, Label: models.RecordHeaders[key]}
	}
	return columns
}

func printStatus(w io.Writer, status models.SessionStatus) {
	tw := newTable(w)
	fmt.Fprintf(tw, "State\t%s\n", status.State)
	if status.StoredAt != nil {
		fmt.Fprintf(tw, "Since\t%s\n", status.StoredAt.Local().Format(time.RFC1123))
	}
	if status.Token != nil {
		if status.Token.Subject != "" {
			fmt.Fprintf(tw, "User\t%s\n", status.Token.Subject)
		}
		if status.Token.ExpiresAt != nil {
			label := status.Token.ExpiresAt.Local().Format(time.RFC1123)
			if status.Token.Expired {
				label += " (expired)"
			}
			fmt.Fprintf(tw, "Expires\t%s\n", label)
		}
	}
	_ = tw.Flush()
}

func printSettings(w io.Writer, settings models.Settings) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Backend\t%s\n", settings.BackendURL)
	fmt.Fprintf(tw, "Session store\t%s\n", settings.SessionStore)
	fmt.Fprintf(tw, "Session\t%s\n", settings.Session.State)
	fmt.Fprintf(tw, "Redirect signed-in users\t%t\n", settings.RedirectAuthenticated)
	formats := make([]string, 0, len(settings.ExportFormats))
	for format := range settings.ExportFormats {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		fmt.Fprintf(tw, "Export %s\t%s\n", format, settings.ExportFormats[format])
	}
	_ = tw.Flush()
}
