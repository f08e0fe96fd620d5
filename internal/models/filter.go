package models

// FilterAll is the sentinel meaning "no constraint on this field".
const FilterAll = "All"

// FilterSpec constrains a record field to an exact value.
type FilterSpec struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Active reports whether the filter constrains anything.
func (f FilterSpec) Active() bool {
	return f.Value != "" && f.Value != FilterAll
}

// Filters are combined with logical AND.
type Filters []FilterSpec

// ReportFilters builds the course/engagement pair used by the reports view. Empty
// values are treated as FilterAll.
func ReportFilters(course, engagement string) Filters {
	if course == "" {
		course = FilterAll
	}
	if engagement == "" {
		engagement = FilterAll
	}
	return Filters{
		{Field: FieldCourse, Value: course},
		{Field: FieldEngagement, Value: engagement},
	}
}
