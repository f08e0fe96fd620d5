package client

import (
	"context"
	"net/http"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

// AuthClient performs the unauthenticated credential exchanges.
type AuthClient struct {
	transport    *Transport
	loginPath    string
	registerPath string
}

// NewAuthClient builds the login/register client. Empty paths fall back to /api/login and /api/register.
func NewAuthClient(transport *Transport, loginPath, registerPath string) *AuthClient {
	if loginPath == "" {
		loginPath = "/api/login"
	}
	if registerPath == "" {
		registerPath = "/api/register"
	}
	return &AuthClient{transport: transport, loginPath: loginPath, registerPath: registerPath}
}

// Login exchanges a username and password for an access token.
func (c *AuthClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.transport.do(ctx, call{
		operation: "login",
		method:    http.MethodPost,
		path:      c.loginPath,
		body:      req,
		out:       &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *AuthClient) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	var out models.RegisterResponse
	if err := c.transport.do(ctx, call{
		operation: "register",
		method:    http.MethodPost,
		path:      c.registerPath,
		body:      req,
		out:       &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}
