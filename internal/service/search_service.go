package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/viewstate"
)

type searchSource interface {
	Search(ctx context.Context, query string) ([]models.Record, error)
}

// SearchService backs the search view.
type SearchService struct {
	data     searchSource
	sessions authFailureHandler
	logger   *zap.Logger
	slot     viewstate.Slot[[]models.Record]
}

// NewSearchService constructs the search view service.
func NewSearchService(data searchSource, sessions authFailureHandler, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{data: data, sessions: sessions, logger: logger}
}

// Search matches students by id or course. A blank query returns no rows without calling the backend.
func (s *SearchService) Search(ctx context.Context, query string, spec *models.SortSpec) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	var records []models.Record
	if query == "" {
		s.slot.Reset()
		records = []models.Record{}
	} else {
		var err error
		records, err = loadView(ctx, &s.slot, s.sessions, query, func(ctx context.Context) ([]models.Record, error) {
			return s.data.Search(ctx, query)
		})
		if err != nil {
			return nil, err
		}
	}
	table, err := studentTable(records, spec)
	if err != nil {
		return nil, err
	}
	table.UpdatedAt = s.slot.UpdatedAt()
	return &models.SearchResult{Query: query, Results: table}, nil
}
