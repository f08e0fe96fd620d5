package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJSONWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	OK(c, gin.H{"title": "Math"}, map[string]interface{}{"sort": "score"})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Math", body["data"]["title"])
	require.Equal(t, "score", body["meta"]["sort"])
}

func TestErrorMapsTypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	AbortError(c, appErrors.ErrNoMatchingRecords, map[string]interface{}{"redirect": "/login"})

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error appErrors.Error        `json:"error"`
		Meta  map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "NO_MATCHING_RECORDS", body.Error.Code)
	require.Equal(t, "/login", body.Meta["redirect"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, errors.New("raw"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
