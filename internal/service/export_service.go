package service

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export persistence.
type ExportConfig struct {
	// URLPrefix is the route that serves signed downloads.
	URLPrefix string
	ResultTTL time.Duration
	// Flat stores files directly under the base directory instead of one directory per export.
	Flat bool
}

// StoredExport captures where a rendered report was written and how to fetch it.
type StoredExport struct {
	ID           string
	RelativePath string
	Token        string
	URL          string
	ExpiresAt    time.Time
}

// ExportService persists rendered reports and issues signed download links.
type ExportService struct {
	storage fileStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. signer may be nil when links are not needed.
func NewExportService(files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/exports"
	}
	return &ExportService{storage: files, signer: signer, logger: logger, cfg: cfg}
}

// Store writes payload under filename and, when a signer is configured, signs a download link.
func (s *ExportService) Store(filename string, payload []byte) (*StoredExport, error) {
	id := uuid.NewString()
	name := filename
	if !s.cfg.Flat {
		name = path.Join(id, filename)
	}
	relPath, err := s.storage.Save(name, payload)
	if err != nil {
		return nil, err
	}
	stored := &StoredExport{ID: id, RelativePath: relPath}
	if s.signer == nil {
		return stored, nil
	}

	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, err
	}
	stored.Token = token
	stored.ExpiresAt = expiresAt
	stored.URL = fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.URLPrefix, "/"), token)
	return stored, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	if s.signer == nil {
		return "", "", time.Time{}, fmt.Errorf("download links are disabled")
	}
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
	return deleted, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "All"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
