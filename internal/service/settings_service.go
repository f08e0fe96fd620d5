package service

import (
	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/pkg/export"
)

type sessionStatusReader interface {
	Status() models.SessionStatus
}

type formatStates interface {
	States() map[string]export.State
}

// SettingsConfig is the static part of the settings view.
type SettingsConfig struct {
	BackendURL            string
	SessionStore          string
	RedirectAuthenticated bool
}

// SettingsService assembles the read-only settings view.
type SettingsService struct {
	cfg      SettingsConfig
	sessions sessionStatusReader
	exports  formatStates
	metrics  *MetricsService
}

// NewSettingsService constructs the settings service.
func NewSettingsService(cfg SettingsConfig, sessions sessionStatusReader, exports formatStates, metrics *MetricsService) *SettingsService {
	return &SettingsService{cfg: cfg, sessions: sessions, exports: exports, metrics: metrics}
}

// View returns the current settings snapshot.
func (s *SettingsService) View() models.Settings {
	settings := models.Settings{
		BackendURL:            s.cfg.BackendURL,
		SessionStore:          s.cfg.SessionStore,
		RedirectAuthenticated: s.cfg.RedirectAuthenticated,
		ExportFormats:         map[string]string{},
		Metrics:               s.metrics.Snapshot(),
	}
	if s.sessions != nil {
		settings.Session = s.sessions.Status()
	}
	if s.exports != nil {
		for format, state := range s.exports.States() {
			settings.ExportFormats[format] = string(state)
		}
	}
	return settings
}
