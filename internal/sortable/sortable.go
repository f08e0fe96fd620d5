// Package sortable orders flat record lists for tabular views. Sorting never
// mutates its input and never performs I/O.
package sortable

import (
	"errors"
	"fmt"
	"slices"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

// ErrUnknownField is returned when a sort targets a field the record type lacks.
var ErrUnknownField = errors.New("unknown sort field")

// Fields maps field keys to the natural ordering of that field.
type Fields[T any] map[string]func(a, b T) int

// Sort returns a sorted copy of items. A nil spec keeps insertion order.
func Sort[T any](items []T, spec *models.SortSpec, fields Fields[T]) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)
	if spec == nil {
		return out, nil
	}
	compare, ok := fields[spec.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, spec.Field)
	}
	if spec.Direction == models.SortDescending {
		slices.SortStableFunc(out, func(a, b T) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out, nil
}

// Next returns the sort that results from requesting field while current is active.
// Requesting the ascending field again flips to descending; anything else sorts
// ascending on field.
func Next(current *models.SortSpec, field string) models.SortSpec {
	if current != nil && current.Field == field && current.Direction == models.SortAscending {
		return models.SortSpec{Field: field, Direction: models.SortDescending}
	}
	return models.SortSpec{Field: field, Direction: models.SortAscending}
}

// Header indicators.
const (
	IndicatorNone       = "↕"
	IndicatorAscending  = "▲"
	IndicatorDescending = "▼"
)

// View holds a private snapshot of items together with its sort state.
type View[T any] struct {
	items  []T
	fields Fields[T]
	spec   *models.SortSpec
}

// NewView copies items so later changes by the owner do not leak into the view.
func NewView[T any](items []T, fields Fields[T], initial *models.SortSpec) *View[T] {
	snapshot := make([]T, len(items))
	copy(snapshot, items)
	v := &View[T]{items: snapshot, fields: fields}
	if initial != nil {
		spec := *initial
		v.spec = &spec
	}
	return v
}

// RequestSort toggles the sort for field.
func (v *View[T]) RequestSort(field string) error {
	if _, ok := v.fields[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	next := Next(v.spec, field)
	v.spec = &next
	return nil
}

// SetSpec replaces the sort state. nil clears sorting.
func (v *View[T]) SetSpec(spec *models.SortSpec) error {
	if spec == nil {
		v.spec = nil
		return nil
	}
	if _, ok := v.fields[spec.Field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, spec.Field)
	}
	s := *spec
	v.spec = &s
	return nil
}

// Spec returns a copy of the active sort, or nil.
func (v *View[T]) Spec() *models.SortSpec {
	if v.spec == nil {
		return nil
	}
	s := *v.spec
	return &s
}

// Items returns the ordered snapshot.
func (v *View[T]) Items() []T {
	out, err := Sort(v.items, v.spec, v.fields)
	if err != nil {
		// spec fields are validated on entry
		return append([]T(nil), v.items...)
	}
	return out
}

// Len returns the number of rows.
func (v *View[T]) Len() int {
	return len(v.items)
}

// Indicator returns the header marker for field.
func (v *View[T]) Indicator(field string) string {
	if v.spec == nil || v.spec.Field != field {
		return IndicatorNone
	}
	if v.spec.Direction == models.SortDescending {
		return IndicatorDescending
	}
	return IndicatorAscending
}
