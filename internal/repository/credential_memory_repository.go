package repository

import (
	"context"
	"sync"
)

// CredentialMemoryRepository keeps the token for the life of the process only.
type CredentialMemoryRepository struct {
	mu    sync.Mutex
	token string
	// SaveErr and ClearErr force failures in tests.
	SaveErr  error
	ClearErr error
}

// NewCredentialMemoryRepository returns a store optionally seeded with a token.
func NewCredentialMemoryRepository(seed string) *CredentialMemoryRepository {
	return &CredentialMemoryRepository{token: seed}
}

func (r *CredentialMemoryRepository) Load(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token, nil
}

func (r *CredentialMemoryRepository) Save(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.token = token
	return nil
}

func (r *CredentialMemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ClearErr != nil {
		return r.ClearErr
	}
	r.token = ""
	return nil
}
