package models

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record field keys, in export column order.
const (
	FieldID         = "id"
	FieldCourse     = "course"
	FieldProgress   = "progress"
	FieldScore      = "score"
	FieldTimeSpent  = "timeSpent"
	FieldEngagement = "PredictedEngagement"
)

// RecordColumns lists record fields in their canonical order.
var RecordColumns = []string{FieldID, FieldCourse, FieldProgress, FieldScore, FieldTimeSpent, FieldEngagement}

// RecordID is the opaque student identifier. The backend emits it as a JSON number
// but any scalar is accepted.
type RecordID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// MarshalJSON emits identifiers that are JSON number literals as numbers so round trips keep
// the backend shape. Anything else, such as "007" or "NaN", is emitted as a string.
func (id RecordID) MarshalJSON() ([]byte, error) {
	if id.numberLiteral() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id RecordID) numberLiteral() bool {
	if id == "" {
		return false
	}
	if c := id[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(id))
}

// Compare orders identifiers numerically when both are numbers, lexically otherwise.
func (id RecordID) Compare(other RecordID) int {
	a, errA := strconv.ParseFloat(string(id), 64)
	b, errB := strconv.ParseFloat(string(other), 64)
	if errA == nil && errB == nil {
		return cmp.Compare(a, b)
	}
	return strings.Compare(string(id), string(other))
}

// Record is one student's course-progress row. Records are immutable snapshots.
type Record struct {
	ID         RecordID   `json:"id"`
	Course     string     `json:"course"`
	Progress   float64    `json:"progress"`
	Score      float64    `json:"score"`
	TimeSpent  float64    `json:"timeSpent"`
	Engagement Engagement `json:"PredictedEngagement"`
}

// Value returns the display value of a record field, used for filtering and export.
func (r Record) Value(field string) (string, bool) {
	switch field {
	case FieldID:
		return string(r.ID), true
	case FieldCourse:
		return r.Course, true
	case FieldProgress:
		return formatNumber(r.Progress), true
	case FieldScore:
		return formatNumber(r.Score), true
	case FieldTimeSpent:
		return formatNumber(r.TimeSpent), true
	case FieldEngagement, "engagement":
		return string(r.Engagement), true
	default:
		return "", false
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RecordFields maps each sortable record field to its natural ordering.
var RecordFields = map[string]func(a, b Record) int{
	FieldID:         func(a, b Record) int { return a.ID.Compare(b.ID) },
	FieldCourse:     func(a, b Record) int { return strings.Compare(a.Course, b.Course) },
	FieldProgress:   func(a, b Record) int { return cmp.Compare(a.Progress, b.Progress) },
	FieldScore:      func(a, b Record) int { return cmp.Compare(a.Score, b.Score) },
	FieldTimeSpent:  func(a, b Record) int { return cmp.Compare(a.TimeSpent, b.TimeSpent) },
	FieldEngagement: func(a, b Record) int { return strings.Compare(string(a.Engagement), string(b.Engagement)) },
}

// RecordHeaders are the human labels of the student table columns.
var RecordHeaders = map[string]string{
	FieldID:         "User ID",
	FieldCourse:     "Course",
	FieldProgress:   "Progress (%)",
	FieldScore:      "Score",
	FieldTimeSpent:  "Time (hrs)",
	FieldEngagement: "Engagement",
}
