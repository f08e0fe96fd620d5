// Package console assembles the session, data and report services shared by the HTTP server
// and the command line client.
package console

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/client"
	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/repository"
	"github.com/noah-isme/elearning-analytics-console/internal/service"
	"github.com/noah-isme/elearning-analytics-console/pkg/cache"
	"github.com/noah-isme/elearning-analytics-console/pkg/config"
	"github.com/noah-isme/elearning-analytics-console/pkg/export"
	"github.com/noah-isme/elearning-analytics-console/pkg/storage"
)

type credentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Options adjust the assembly for the hosting process.
type Options struct {
	// ExportDir overrides cfg.Reports.StorageDir.
	ExportDir string
	// SignedLinks issues download tokens for stored reports.
	SignedLinks bool
	// Flat writes reports directly into the export directory.
	Flat bool
	// Store replaces the configured credential store.
	Store credentialStore
}

// Console holds the wired services.
type Console struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Exports *export.Registry

	Sessions  *service.SessionService
	Guard     *service.RouteGuard
	Dashboard *service.DashboardService
	Students  *service.StudentService
	Courses   *service.CourseService
	Search    *service.SearchService
	Reports   *service.ReportService
	Profile   *service.ProfileService
	Settings  *service.SettingsService

	closers []func() error
}

// New wires the console and restores any persisted session. Export serializers start
// loading in the background.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Console, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Console{Config: cfg, Logger: logger, Metrics: service.NewMetricsService()}

	store := opts.Store
	if store == nil {
		var err error
		store, err = c.openStore(ctx)
		if err != nil {
			return nil, err
		}
	}

	validate := validator.New()
	transport := client.NewTransport(cfg.Backend, logger.Named("backend"), c.Metrics)
	c.Sessions = service.NewSessionService(
		client.NewAuthClient(transport, cfg.Backend.LoginPath, cfg.Backend.RegisterPath),
		store, validate, c.Metrics, logger.Named("session"),
	)
	data := client.NewDataClient(transport, c.Sessions)

	c.Exports = export.NewRegistry(logger.Named("export"),
		export.NewXLSXExporter(models.FieldProgress, models.FieldScore, models.FieldTimeSpent),
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)
	c.Exports.Load(ctx)

	dir := opts.ExportDir
	if dir == "" {
		dir = cfg.Reports.StorageDir
	}
	files, err := storage.NewLocalStorage(dir)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init export storage: %w", err)
	}
	var signer *storage.SignedURLSigner
	if opts.SignedLinks {
		signer = storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	}
	exporter := service.NewExportService(files, signer, service.ExportConfig{
		ResultTTL: cfg.Reports.SignedURLTTL,
		Flat:      opts.Flat,
	}, logger.Named("export"))

	c.Guard = service.NewRouteGuard(c.Sessions, service.GuardConfig{RedirectAuthenticated: cfg.Guard.RedirectAuthenticated})
	c.Dashboard = service.NewDashboardService(data, c.Sessions, service.DashboardServiceConfig{TableLimit: cfg.Dashboard.TableLimit}, logger.Named("dashboard"))
	c.Students = service.NewStudentService(data, c.Sessions, logger.Named("students"))
	c.Courses = service.NewCourseService(data, c.Sessions, logger.Named("courses"))
	c.Search = service.NewSearchService(data, c.Sessions, logger.Named("search"))
	c.Profile = service.NewProfileService(data, c.Sessions, validate, logger.Named("profile"))
	c.Reports = service.NewReportService(data, c.Sessions, c.Exports, exporter, c.Metrics, logger.Named("reports"), service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	c.Settings = service.NewSettingsService(service.SettingsConfig{
		BackendURL:            cfg.Backend.BaseURL,
		SessionStore:          cfg.Session.Store,
		RedirectAuthenticated: cfg.Guard.RedirectAuthenticated,
	}, c.Sessions, c.Exports, c.Metrics)

	// Views that cache a snapshot drop it when the session ends.
	c.Sessions.Subscribe(func(_, to models.SessionState) {
		if to == models.SessionUnauthenticated {
			c.Students.Reset()
		}
	})

	state := c.Sessions.Restore(ctx)
	logger.Debug("console ready", zap.String("session", string(state)), zap.String("store", cfg.Session.Store))
	return c, nil
}

// Close releases the credential store connection, if any.
func (c *Console) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *Console) openStore(ctx context.Context) (credentialStore, error) {
	cfg := c.Config.Session
	switch cfg.Store {
	case config.SessionStoreRedis:
		rdb, err := cache.NewRedis(ctx, c.Config.Redis)
		if err != nil {
			return nil, err
		}
		repo := repository.NewCredentialRedisRepository(rdb, cfg.Key, c.Logger.Named("credentials"))
		c.closers = append(c.closers, repo.Close)
		return repo, nil
	case config.SessionStoreMemory:
		return repository.NewCredentialMemoryRepository(""), nil
	case config.SessionStoreFile, "":
		return repository.NewCredentialFileRepository(cfg.File, cfg.Key, cfg.Secret, c.Logger.Named("credentials")), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
