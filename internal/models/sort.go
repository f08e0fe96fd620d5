package models

// SortDirection is the ordering applied to a sorted column.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SortSpec is the active sort of a view. A nil *SortSpec means natural order.
type SortSpec struct {
	Field     string        `json:"key"`
	Direction SortDirection `json:"direction"`
}
