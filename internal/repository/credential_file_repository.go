package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sealed:"

// CredentialFileRepository persists the session token in a small JSON document on
// disk, keyed by the well-known session key.
type CredentialFileRepository struct {
	path   string
	key    string
	secret *[32]byte
	logger *zap.Logger
}

// NewCredentialFileRepository builds a file-backed credential store. When secret is
// non-empty the token is sealed with NaCl secretbox before it touches disk.
func NewCredentialFileRepository(path, key, secret string, logger *zap.Logger) *CredentialFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := &CredentialFileRepository{path: path, key: key, logger: logger}
	if secret != "" {
		sum := sha256.Sum256([]byte(secret))
		repo.secret = &sum
	}
	return repo
}

// Load returns the stored token, or "" when nothing is persisted.
func (r *CredentialFileRepository) Load(ctx context.Context) (string, error) {
	doc, err := r.read()
	if err != nil {
		return "", err
	}
	raw := doc[r.key]
	if raw == "" {
		return "", nil
	}
	return r.open(raw)
}

// Save replaces the stored token.
func (r *CredentialFileRepository) Save(ctx context.Context, token string) error {
	doc, err := r.read()
	if err != nil {
		r.logger.Warn("session file unreadable, overwriting", zap.String("path", r.path), zap.Error(err))
		doc = map[string]string{}
	}
	sealed, err := r.seal(token)
	if err != nil {
		return err
	}
	doc[r.key] = sealed
	return r.write(doc)
}

// Clear removes the stored token. Other keys in the document are preserved.
func (r *CredentialFileRepository) Clear(ctx context.Context) error {
	doc, err := r.read()
	if err != nil {
		if removeErr := os.Remove(r.path); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("remove session file: %w", removeErr)
		}
		return nil
	}
	if _, ok := doc[r.key]; !ok {
		return nil
	}
	delete(doc, r.key)
	if len(doc) == 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	return r.write(doc)
}

// Path exposes the session file location.
func (r *CredentialFileRepository) Path() string {
	return r.path
}

func (r *CredentialFileRepository) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}
	doc := map[string]string{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return doc, nil
}

func (r *CredentialFileRepository) write(doc map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("prepare session directory: %w", err)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (r *CredentialFileRepository) seal(token string) (string, error) {
	if r.secret == nil {
		return token, nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, r.secret)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

func (r *CredentialFileRepository) open(raw string) (string, error) {
	if !strings.HasPrefix(raw, sealedPrefix) {
		if r.secret != nil {
			return "", errors.New("session token is not sealed")
		}
		return raw, nil
	}
	if r.secret == nil {
		return "", errors.New("sealed session token but no session secret configured")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed token: %w", err)
	}
	if len(data) < 24 {
		return "", errors.New("sealed token too short")
	}
	var nonce [24]byte
	copy(nonce[:], data[:24])
	plain, ok := secretbox.Open(nil, data[24:], &nonce, r.secret)
	if !ok {
		return "", errors.New("sealed token cannot be opened with the configured secret")
	}
	return string(plain), nil
}
