package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func perform(t *testing.T, allowed []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, "/api/v1/attendance", nil)
	if origin != "" {
		c.Request.Header.Set("Origin", origin)
	}
	New(allowed)(c)
	return rec
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	rec := perform(t, []string{"https://activities.example.gov.uk"}, http.MethodGet, "https://activities.example.gov.uk")

	assert.Equal(t, "https://activities.example.gov.uk", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	rec := perform(t, []string{"https://activities.example.gov.uk"}, http.MethodGet, "https://evil.example.com")

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWildcardWithoutConfiguredOrigins(t *testing.T) {
	rec := perform(t, nil, http.MethodGet, "")

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	rec := perform(t, nil, http.MethodOptions, "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, PUT, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
