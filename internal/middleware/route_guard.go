package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/service"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
	"github.com/noah-isme/elearning-analytics-console/pkg/logger"
	"github.com/noah-isme/elearning-analytics-console/pkg/response"
)

type viewGuard interface {
	Check(view models.View) service.Decision
}

// RequireView gates a route behind the guard decision for view. Page loads (GET, HEAD) are
// redirected with 303; other methods receive an error envelope carrying the redirect target.
func RequireView(guard viewGuard, view models.View) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(logger.ViewKey, string(view))
		decision := guard.Check(view)
		if decision.Allowed {
			c.Next()
			return
		}

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Redirect(http.StatusSeeOther, decision.Redirect)
			c.Abort()
			return
		}

		err := appErrors.Clone(appErrors.ErrUnauthorized, "login required")
		if view.Public() {
			err = appErrors.Clone(appErrors.ErrForbidden, "already signed in")
		}
		response.AbortError(c, err, map[string]interface{}{"redirect": decision.Redirect})
	}
}
