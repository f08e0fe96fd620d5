package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/auth"
	"github.com/noah-isme/elearning-analytics-console/internal/models"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

// User-facing session messages.
const (
	MsgLoginFailed         = "Login failed. Please check your credentials."
	MsgRegisterFailed      = "Registration failed. Please try again."
	MsgRegisterSucceeded   = "Registration successful. Please log in."
	MsgCredentialsRequired = "Username and password are required."
	MsgPasswordTooShort    = "Password must be at least 6 characters."
	MsgLoggedOut           = "You have been logged out."
	MsgSessionExpired      = "Your session has expired. Please log in again."
	msgMissingAccessToken  = "login response did not include an access token"
)

type credentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type authGateway interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
}

type sessionMetrics interface {
	ObserveSessionTransition(state models.SessionState)
}

// SessionListener is notified after every state transition.
type SessionListener func(from, to models.SessionState)

// SessionService owns the single credential of the console. It is the only writer;
// every other component reads through Token, State or Authenticated.
type SessionService struct {
	mu         sync.RWMutex
	credential models.Credential

	listenerMu sync.Mutex
	listeners  map[int]SessionListener
	nextID     int

	auth      authGateway
	store     credentialStore
	validator *validator.Validate
	metrics   sessionMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionService constructs a SessionService in the Unauthenticated state. Call Restore to
// recover a persisted credential.
func NewSessionService(gateway authGateway, store credentialStore, validate *validator.Validate, metrics sessionMetrics, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{
		auth:      gateway,
		store:     store,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		listeners: map[int]SessionListener{},
		now:       time.Now,
	}
}

// Restore recovers a persisted credential without contacting the backend.
func (s *SessionService) Restore(ctx context.Context) models.SessionState {
	token, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to restore session", zap.Error(err))
		return s.State()
	}
	if token == "" {
		return s.State()
	}
	s.transition(models.Credential{Token: token, StoredAt: s.now().UTC()})
	s.logger.Debug("session restored")
	return models.SessionAuthenticated
}

// Login exchanges credentials for a token. Failures are reported in the result, never returned.
func (s *SessionService) Login(ctx context.Context, username, password string) models.AuthResult {
	req := models.LoginRequest{Username: strings.TrimSpace(username), Password: password}
	if err := s.validator.Struct(req); err != nil {
		return s.failure(MsgCredentialsRequired, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, MsgCredentialsRequired))
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		s.logger.Info("login rejected", zap.String("username", req.Username), zap.Error(err))
		if appErrors.FromError(err).Code == appErrors.ErrTransport.Code {
			return s.failure(userMessage(err, appErrors.ErrTransport.Message), err)
		}
		message := userMessage(err, MsgLoginFailed)
		return s.failure(message, appErrors.Wrap(err, appErrors.ErrInvalidCredentials.Code, appErrors.ErrInvalidCredentials.Status, message))
	}
	if resp == nil || resp.AccessToken == "" {
		message := MsgLoginFailed
		if resp != nil && resp.Message != "" {
			message = resp.Message
		}
		return s.failure(message, appErrors.Clone(appErrors.ErrInvalidCredentials, msgMissingAccessToken))
	}

	if err := s.store.Save(ctx, resp.AccessToken); err != nil {
		s.logger.Warn("failed to persist credential", zap.Error(err))
	}
	s.transition(models.Credential{Token: resp.AccessToken, StoredAt: s.now().UTC()})
	s.logger.Info("login succeeded", zap.String("username", req.Username))
	return models.AuthResult{OK: true, Navigate: models.PathDashboard, State: models.SessionAuthenticated}
}

// Register creates an account. The session state is never changed.
func (s *SessionService) Register(ctx context.Context, username, password string) models.AuthResult {
	req := models.RegisterRequest{Username: strings.TrimSpace(username), Password: password}
	if err := s.validator.Struct(req); err != nil {
		message := MsgCredentialsRequired
		if req.Username != "" && req.Password != "" {
			message = MsgPasswordTooShort
		}
		return s.failure(message, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
	}

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.Info("registration rejected", zap.String("username", req.Username), zap.Error(err))
		return s.failure(userMessage(err, MsgRegisterFailed), err)
	}
	message := MsgRegisterSucceeded
	if resp != nil && resp.Message != "" {
		message = resp.Message
	}
	return models.AuthResult{OK: true, Message: message, Navigate: models.PathLogin, State: s.State()}
}

// Logout clears the credential. Safe to call when already Unauthenticated.
func (s *SessionService) Logout(ctx context.Context) models.AuthResult {
	var clearErr error
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted credential", zap.Error(err))
		clearErr = err
	}
	s.transition(models.Credential{})
	return models.AuthResult{OK: true, Message: MsgLoggedOut, Navigate: models.PathLogin, State: models.SessionUnauthenticated, Err: clearErr}
}

// HandleAuthorizationFailure logs the session out when err is a backend credential rejection.
func (s *SessionService) HandleAuthorizationFailure(ctx context.Context, err error) bool {
	if !appErrors.IsAuthorizationFailure(err) {
		return false
	}
	if !s.Authenticated() {
		return true
	}
	s.logger.Info("credential rejected by backend, logging out", zap.Error(err))
	s.Logout(ctx)
	return true
}

// State returns the current session state.
func (s *SessionService) State() models.SessionState {
	if s.Authenticated() {
		return models.SessionAuthenticated
	}
	return models.SessionUnauthenticated
}

// Authenticated reports whether a credential is held.
func (s *SessionService) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential.Present()
}

// Token returns the bearer token, or "" when Unauthenticated.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential.Token
}

// Credential returns a copy of the held credential.
func (s *SessionService) Credential() models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Status summarises the session, including unverified token metadata when available.
func (s *SessionService) Status() models.SessionStatus {
	cred := s.Credential()
	if !cred.Present() {
		return models.SessionStatus{State: models.SessionUnauthenticated}
	}
	storedAt := cred.StoredAt
	return models.SessionStatus{
		State:    models.SessionAuthenticated,
		StoredAt: &storedAt,
		Token:    auth.Inspect(cred.Token, s.now()),
	}
}

// Subscribe registers fn for state transitions and returns a function removing it.
func (s *SessionService) Subscribe(fn SessionListener) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *SessionService) transition(next models.Credential) {
	s.mu.Lock()
	from := s.stateLocked()
	s.credential = next
	to := s.stateLocked()
	s.mu.Unlock()

	if from == to {
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveSessionTransition(to)
	}
	s.listenerMu.Lock()
	listeners := make([]SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(from, to)
	}
}

func (s *SessionService) stateLocked() models.SessionState {
	if s.credential.Present() {
		return models.SessionAuthenticated
	}
	return models.SessionUnauthenticated
}

func (s *SessionService) failure(message string, err error) models.AuthResult {
	return models.AuthResult{OK: false, Message: message, State: s.State(), Err: err}
}

var catalogueMessages = map[string]string{
	appErrors.ErrValidation.Code:         appErrors.ErrValidation.Message,
	appErrors.ErrInvalidCredentials.Code: appErrors.ErrInvalidCredentials.Message,
	appErrors.ErrUnauthorized.Code:       appErrors.ErrUnauthorized.Message,
	appErrors.ErrForbidden.Code:          appErrors.ErrForbidden.Message,
	appErrors.ErrNotFound.Code:           appErrors.ErrNotFound.Message,
	appErrors.ErrTransport.Code:          appErrors.ErrTransport.Message,
	appErrors.ErrInternal.Code:           appErrors.ErrInternal.Message,
}

// userMessage returns the server-provided message carried by err, or fallback when the
// error only holds a catalogue default.
func userMessage(err error, fallback string) string {
	appErr := appErrors.FromError(err)
	if appErr == nil || appErr.Code == appErrors.ErrInternal.Code {
		return fallback
	}
	if strings.TrimSpace(appErr.Message) == "" || catalogueMessages[appErr.Code] == appErr.Message {
		return fallback
	}
	return appErr.Message
}
