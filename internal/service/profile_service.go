package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/viewstate"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

// Profile view messages.
const (
	MsgProfileUpdated = "Profile updated successfully."
	MsgInvalidEmail   = "Please enter a valid email address."
)

type profileSource interface {
	Profile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
}

// ProfileService backs the profile view.
type ProfileService struct {
	data      profileSource
	sessions  authFailureHandler
	validator *validator.Validate
	logger    *zap.Logger
	slot      viewstate.Slot[models.Profile]
}

// NewProfileService constructs the profile service.
func NewProfileService(data profileSource, sessions authFailureHandler, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{data: data, sessions: sessions, validator: validate, logger: logger}
}

// Get loads the signed-in account.
func (s *ProfileService) Get(ctx context.Context) (*models.Profile, error) {
	profile, err := loadView(ctx, &s.slot, s.sessions, "", func(ctx context.Context) (models.Profile, error) {
		p, err := s.data.Profile(ctx)
		if err != nil || p == nil {
			return models.Profile{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update changes email and, when given, password. It returns the confirmation message.
func (s *ProfileService) Update(ctx context.Context, update models.ProfileUpdate) (string, error) {
	update.Email = strings.TrimSpace(update.Email)
	if err := s.validator.Struct(update); err != nil {
		message := MsgInvalidEmail
		if update.Email != "" && s.validator.Var(update.Email, "email") == nil {
			message = MsgPasswordTooShort
		}
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	if err := s.data.UpdateProfile(ctx, update); err != nil {
		return "", checkAuth(ctx, s.sessions, err)
	}
	s.slot.Reset()
	s.logger.Info("profile updated")
	return MsgProfileUpdated, nil
}
