package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/viewstate"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

type courseSource interface {
	Courses(ctx context.Context) ([]models.CourseSummary, error)
	CourseDetail(ctx context.Context, name string) ([]models.Record, error)
}

// CourseService backs the course overview and course detail views.
type CourseService struct {
	data     courseSource
	sessions authFailureHandler
	logger   *zap.Logger

	list   viewstate.Slot[[]models.CourseSummary]
	detail viewstate.Slot[[]models.Record]
}

// NewCourseService constructs the course views service.
func NewCourseService(data courseSource, sessions authFailureHandler, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{data: data, sessions: sessions, logger: logger}
}

// List returns the course summaries ordered by spec.
func (s *CourseService) List(ctx context.Context, spec *models.SortSpec) (*models.Table[models.CourseSummary], error) {
	courses, err := loadView(ctx, &s.list, s.sessions, "", s.data.Courses)
	if err != nil {
		return nil, err
	}
	table, err := courseTable(courses, spec)
	if err != nil {
		return nil, err
	}
	table.UpdatedAt = s.list.UpdatedAt()
	return &table, nil
}

// Titles returns the course titles in backend order.
func (s *CourseService) Titles(ctx context.Context) ([]string, error) {
	courses, err := loadView(ctx, &s.list, s.sessions, "", s.data.Courses)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(courses))
	for i, c := range courses {
		titles[i] = c.Title
	}
	return titles, nil
}

// Detail lists the students of one course. A newer Detail call supersedes older ones, so
// navigating between courses never shows a stale course.
func (s *CourseService) Detail(ctx context.Context, name string, spec *models.SortSpec) (*models.CourseDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course name is required")
	}
	records, err := loadView(ctx, &s.detail, s.sessions, name, func(ctx context.Context) ([]models.Record, error) {
		return s.data.CourseDetail(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	table, err := studentTable(records, spec)
	if err != nil {
		return nil, err
	}
	table.UpdatedAt = s.detail.UpdatedAt()
	return &models.CourseDetail{Course: name, Students: table}, nil
}
