package service

import "github.com/noah-isme/elearning-analytics-console/internal/models"

type sessionReader interface {
	Authenticated() bool
}

// GuardConfig holds route guard product switches.
type GuardConfig struct {
	// RedirectAuthenticated sends signed-in users away from login and register.
	RedirectAuthenticated bool
}

// Decision is the outcome of a guard check.
type Decision struct {
	View     models.View `json:"view"`
	Allowed  bool        `json:"allowed"`
	Redirect string      `json:"redirect,omitempty"`
}

// RouteGuard decides whether a view may run. Every check reads the live session state.
type RouteGuard struct {
	sessions sessionReader
	cfg      GuardConfig
}

// NewRouteGuard builds a guard over the session.
func NewRouteGuard(sessions sessionReader, cfg GuardConfig) *RouteGuard {
	return &RouteGuard{sessions: sessions, cfg: cfg}
}

// Check evaluates view against the current session state.
func (g *RouteGuard) Check(view models.View) Decision {
	authenticated := g.sessions != nil && g.sessions.Authenticated()
	if view.Public() {
		if authenticated && g.cfg.RedirectAuthenticated {
			return Decision{View: view, Allowed: false, Redirect: models.PathDashboard}
		}
		return Decision{View: view, Allowed: true}
	}
	if !authenticated {
		return Decision{View: view, Allowed: false, Redirect: models.PathLogin}
	}
	return Decision{View: view, Allowed: true}
}
