package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/sortable"
	"github.com/noah-isme/elearning-analytics-console/internal/viewstate"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

type studentSource interface {
	Students(ctx context.Context) ([]models.Record, error)
}

// StudentService backs the students view. It owns the view's sort state.
type StudentService struct {
	data     studentSource
	sessions authFailureHandler
	logger   *zap.Logger

	slot viewstate.Slot[[]models.Record]
	mu   sync.Mutex
	spec *models.SortSpec
}

// NewStudentService constructs the students view service.
func NewStudentService(data studentSource, sessions authFailureHandler, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{data: data, sessions: sessions, logger: logger}
}

// List fetches all students and returns them ordered by the view's current sort.
func (s *StudentService) List(ctx context.Context) (*models.Table[models.StudentRow], error) {
	records, err := loadView(ctx, &s.slot, s.sessions, "", s.data.Students)
	if err != nil {
		s.logger.Debug("students view load failed", zap.Error(err))
		return nil, err
	}
	return s.table(records)
}

// Sort toggles the sort on field and reorders the current snapshot without refetching.
func (s *StudentService) Sort(ctx context.Context, field string) (*models.Table[models.StudentRow], error) {
	if _, ok := models.RecordFields[field]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown sort field "+field)
	}
	s.mu.Lock()
	next := sortable.Next(s.spec, field)
	s.spec = &next
	s.mu.Unlock()

	records, _, ok := s.slot.Snapshot()
	if !ok {
		return s.List(ctx)
	}
	return s.table(records)
}

// SetSort replaces the view's sort state. nil restores natural order.
func (s *StudentService) SetSort(spec *models.SortSpec) error {
	if spec != nil {
		if _, ok := models.RecordFields[spec.Field]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown sort field "+spec.Field)
		}
		copied := *spec
		spec = &copied
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spec = spec
	return nil
}

// SortSpec returns the view's current sort.
func (s *StudentService) SortSpec() *models.SortSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spec == nil {
		return nil
	}
	copied := *s.spec
	return &copied
}

// Reset drops the snapshot, e.g. after logout.
func (s *StudentService) Reset() {
	s.slot.Reset()
}

func (s *StudentService) table(records []models.Record) (*models.Table[models.StudentRow], error) {
	table, err := studentTable(records, s.SortSpec())
	if err != nil {
		return nil, err
	}
	table.UpdatedAt = s.slot.UpdatedAt()
	return &table, nil
}
