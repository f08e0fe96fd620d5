package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/response"
)

type profileService interface {
	Get(ctx context.Context) (*models.Profile, error)
	Update(ctx context.Context, update models.ProfileUpdate) (string, error)
}

type settingsService interface {
	View() models.Settings
}

// AccountHandler serves the profile and settings views.
type AccountHandler struct {
	profile  profileService
	settings settingsService
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(profile profileService, settings settingsService) *AccountHandler {
	return &AccountHandler{profile: profile, settings: settings}
}

// Profile godoc
// @Summary Signed-in account
// @Tags Account
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *AccountHandler) Profile(c *gin.Context) {
	profile, err := h.profile.Get(c.Request.Context())
	if err != nil {
		writeViewError(c, err)
		return
	}
	response.OK(c, profile)
}

// UpdateProfile godoc
// @Summary Change email and password
// @Tags Account
// @Accept json
// @Produce json
// @Param payload body models.ProfileUpdate true "Profile changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	message, err := h.profile.Update(c.Request.Context(), req)
	if err != nil {
		writeViewError(c, err)
		return
	}
	response.OK(c, gin.H{"message": message})
}

// Settings godoc
// @Summary Console settings
// @Tags Account
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *AccountHandler) Settings(c *gin.Context) {
	response.OK(c, h.settings.View())
}
