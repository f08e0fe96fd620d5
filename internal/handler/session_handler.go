package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/response"
)

type sessionService interface {
	Login(ctx context.Context, username, password string) models.AuthResult
	Register(ctx context.Context, username, password string) models.AuthResult
	Logout(ctx context.Context) models.AuthResult
	Status() models.SessionStatus
}

// SessionHandler wires the login, registration and logout flows to HTTP.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Status godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Status(c *gin.Context) {
	response.OK(c, h.service.Status())
}

// Login godoc
// @Summary Sign in
// @Description Exchange username and password for a backend token held by the console
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	writeAuthResult(c, h.service.Login(c.Request.Context(), req.Username, req.Password))
}

// Register godoc
// @Summary Create an account
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /register [post]
func (h *SessionHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	result := h.service.Register(c.Request.Context(), req.Username, req.Password)
	if !result.OK {
		writeAuthResult(c, result)
		return
	}
	response.Created(c, result, navigateMeta(result))
}

// Logout godoc
// @Summary Sign out
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	// A failed credential wipe still ends the in-memory session.
	writeAuthResult(c, h.service.Logout(c.Request.Context()))
}

func writeAuthResult(c *gin.Context, result models.AuthResult) {
	if result.OK {
		response.OK(c, result, navigateMeta(result))
		return
	}
	err := appErrors.FromError(result.Err)
	if err == nil {
		err = appErrors.ErrInternal
	}
	response.Error(c, appErrors.Clone(err, result.Message))
}

func navigateMeta(result models.AuthResult) map[string]interface{} {
	if result.Navigate == "" {
		return nil
	}
	return map[string]interface{}{"redirect": result.Navigate}
}
