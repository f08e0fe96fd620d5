package models

import (
	"cmp"
	"strings"
)

// CourseSummary aggregates enrolment for one course.
type CourseSummary struct {
	Title       string  `json:"title"`
	Students    int     `json:"students"`
	AvgProgress float64 `json:"avgProgress"`
	Color       string  `json:"color"`
}

var courseAccents = []string{"border-sky-500", "border-emerald-500", "border-amber-500", "border-violet-500"}

// CourseAccent returns the card accent for the i-th course.
func CourseAccent(i int) string {
	if i < 0 {
		i = -i
	}
	return courseAccents[i%len(courseAccents)]
}

// CourseFields maps sortable course columns to their natural ordering.
var CourseFields = map[string]func(a, b CourseSummary) int{
	"title":       func(a, b CourseSummary) int { return strings.Compare(a.Title, b.Title) },
	"students":    func(a, b CourseSummary) int { return cmp.Compare(a.Students, b.Students) },
	"avgProgress": func(a, b CourseSummary) int { return cmp.Compare(a.AvgProgress, b.AvgProgress) },
}
