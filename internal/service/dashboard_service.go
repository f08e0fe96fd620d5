package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/viewstate"
)

type dashboardSource interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	Students(ctx context.Context) ([]models.Record, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	TableLimit int
}

// DashboardService composes the dashboard from the stats and students endpoints.
type DashboardService struct {
	data     dashboardSource
	sessions authFailureHandler
	logger   *zap.Logger
	cfg      DashboardServiceConfig
	slot     viewstate.Slot[models.DashboardView]
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(data dashboardSource, sessions authFailureHandler, cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TableLimit <= 0 {
		cfg.TableLimit = 10
	}
	return &DashboardService{data: data, sessions: sessions, logger: logger, cfg: cfg}
}

// Load fetches stats and students concurrently and waits for both.
func (s *DashboardService) Load(ctx context.Context) (*models.DashboardView, error) {
	view, err := loadView(ctx, &s.slot, s.sessions, "", s.fetch)
	if err != nil {
		s.logger.Debug("dashboard load failed", zap.Error(err))
		return nil, err
	}
	view.UpdatedAt = s.slot.UpdatedAt()
	return &view, nil
}

func (s *DashboardService) fetch(ctx context.Context) (models.DashboardView, error) {
	var (
		stats    *models.DashboardStats
		students []models.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.data.DashboardStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		students, err = s.data.Students(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardView{}, err
	}

	top := students
	if len(top) > s.cfg.TableLimit {
		top = top[:s.cfg.TableLimit]
	}
	view := models.DashboardView{
		TopStudents:   models.StudentRows(top),
		TotalStudents: len(students),
	}
	if stats != nil {
		view.Stats = *stats
	}
	return view, nil
}
