package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func identityTestRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/items", Identity(), func(c *gin.Context) {
		*captured = c.GetString(CtxUserIDKey)
		c.Status(http.StatusCreated)
	})
	return r
}

func TestIdentityPrefersDeviceID(t *testing.T) {
	var got string
	r := identityTestRouter(&got)

	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set(HeaderDeviceID, "abc-123")
	req.Header.Set(HeaderMACAddress, "00:11:22:33:44:55")
	req.Header.Set("User-Agent", "TestAgent/1.0")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "device_abc-123", got)
}

func TestIdentityFallsBackToMAC(t *testing.T) {
	var got string
	r := identityTestRouter(&got)

	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set(HeaderMACAddress, "00:11:22:33:44:55")
	req.Header.Set("User-Agent", "TestAgent/1.0")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "mac_00:11:22:33:44:55", got)
}

func TestIdentityFallsBackToHashedUserAgent(t *testing.T) {
	var got string
	r := identityTestRouter(&got)

	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set("User-Agent", "TestAgent/1.0")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, strings.HasPrefix(got, "ua_"))

	// The same agent must map to the same identity.
	var second string
	r2 := identityTestRouter(&second)
	req2 := httptest.NewRequest(http.MethodPost, "/items", nil)
	req2.Header.Set("User-Agent", "TestAgent/1.0")
	r2.ServeHTTP(httptest.NewRecorder(), req2)
	require.Equal(t, got, second)
}

func TestIdentityRejectedWhenAbsent(t *testing.T) {
	var got string
	r := identityTestRouter(&got)

	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.Header.Set("User-Agent", "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "IDENTITY_REQUIRED")
	require.Empty(t, got)
}
