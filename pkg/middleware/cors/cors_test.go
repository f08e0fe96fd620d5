package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearning-analytics-console/pkg/config"
)

func newRouter(cfg config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(cfg))
	r.GET("/students", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/students", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowedOrigin(t *testing.T) {
	r := newRouter(config.CORSConfig{AllowedOrigins: []string{"http://Console.test/"}, AllowCredentials: true})

	w := serve(r, http.MethodGet, "http://console.test", false)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "http://console.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSCredentialsAreOptIn(t *testing.T) {
	r := newRouter(config.CORSConfig{AllowedOrigins: []string{"http://console.test"}})

	w := serve(r, http.MethodGet, "http://console.test", false)

	require.Equal(t, "http://console.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := newRouter(config.CORSConfig{AllowedOrigins: []string{"http://console.test"}})

	w := serve(r, http.MethodGet, "http://evil.test", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "http://evil.test", true)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(config.CORSConfig{MaxAge: 5 * time.Minute})

	w := serve(r, http.MethodOptions, "http://any.test", true)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	require.Equal(t, "300", w.Header().Get("Access-Control-Max-Age"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestCORSWithoutOriginPassesThrough(t *testing.T) {
	r := newRouter(config.CORSConfig{})

	w := serve(r, http.MethodGet, "", false)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
