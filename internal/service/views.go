package service

import (
	"context"
	"errors"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/sortable"
	"github.com/noah-isme/elearning-analytics-console/internal/viewstate"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

type authFailureHandler interface {
	HandleAuthorizationFailure(ctx context.Context, err error) bool
}

// loadView runs fetch under a fresh ticket of slot. Authorization failures log the
// session out before anything else; results overtaken by a newer load are dropped.
func loadView[T any](ctx context.Context, slot *viewstate.Slot[T], sessions authFailureHandler, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	ticket := slot.Begin()
	value, err := fetch(ctx)
	if err != nil {
		if sessions != nil && sessions.HandleAuthorizationFailure(ctx, err) {
			slot.Reset()
			return zero, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, MsgSessionExpired)
		}
		if !slot.Current(ticket) {
			return zero, appErrors.Clone(appErrors.ErrSuperseded, "")
		}
		return zero, err
	}
	if !slot.Commit(ticket, key, value) {
		return zero, appErrors.Clone(appErrors.ErrSuperseded, "")
	}
	return value, nil
}

// checkAuth funnels a non-view backend error through the auto-logout policy.
func checkAuth(ctx context.Context, sessions authFailureHandler, err error) error {
	if err == nil {
		return nil
	}
	if sessions != nil && sessions.HandleAuthorizationFailure(ctx, err) {
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, MsgSessionExpired)
	}
	return err
}

func sortError(err error) error {
	if errors.Is(err, sortable.ErrUnknownField) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return err
}

func studentTable(records []models.Record, spec *models.SortSpec) (models.Table[models.StudentRow], error) {
	view := sortable.NewView(records, sortable.Fields[models.Record](models.RecordFields), nil)
	if err := view.SetSpec(spec); err != nil {
		return models.Table[models.StudentRow]{}, sortError(err)
	}
	columns := make([]models.Column, len(models.RecordColumns))
	for i, key := range models.RecordColumns {
		columns[i] = models.Column{Key: key, Label: models.RecordHeaders[key], Indicator: view.Indicator(key)}
	}
	return models.Table[models.StudentRow]{
		Rows:    models.StudentRows(view.Items()),
		Columns: columns,
		Sort:    view.Spec(),
		Total:   view.Len(),
	}, nil
}

func courseTable(courses []models.CourseSummary, spec *models.SortSpec) (models.Table[models.CourseSummary], error) {
	view := sortable.NewView(courses, sortable.Fields[models.CourseSummary](models.CourseFields), nil)
	if err := view.SetSpec(spec); err != nil {
		return models.Table[models.CourseSummary]{}, sortError(err)
	}
	columns := make([]models.Column, len(models.CourseColumns))
	for i, key := range models.CourseColumns {
		columns[i] = models.Column{Key: key, Label: models.CourseHeaders[key], Indicator: view.Indicator(key)}
	}
	return models.Table[models.CourseSummary]{
		Rows:    view.Items(),
		Columns: columns,
		Sort:    view.Spec(),
		Total:   view.Len(),
	}, nil
}

// ParseSort builds a SortSpec from a field and direction; an empty field means natural order.
func ParseSort(field, direction string) (*models.SortSpec, error) {
	if field == "" {
		return nil, nil
	}
	switch models.SortDirection(direction) {
	case "", models.SortAscending, "asc":
		return &models.SortSpec{Field: field, Direction: models.SortAscending}, nil
	case models.SortDescending, "desc":
		return &models.SortSpec{Field: field, Direction: models.SortDescending}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "sort direction must be ascending or descending")
	}
}
