package middleware

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "channel-secret"

func signed(body string) string {
	return base64.StdEncoding.EncodeToString(Sign(testSecret, []byte(body)))
}

func setupSignatureRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), LineSignature(testSecret, zap.NewNop()))
	router.POST("/callback", func(c *gin.Context) {
		raw, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(raw))
	})
	return router
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := base64.StdEncoding.EncodeToString(Sign(testSecret, body))

	assert.True(t, ValidSignature(testSecret, sig, body))
	assert.False(t, ValidSignature("other-secret", sig, body))
	assert.False(t, ValidSignature(testSecret, sig, []byte(`{"events":[{}]}`)))
	assert.False(t, ValidSignature(testSecret, "not base64!", body))
}

func TestLineSignature(t *testing.T) {
	body := `{"destination":"U1","events":[]}`

	testCases := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{"valid", signed(body), http.StatusOK},
		{"missing", "", http.StatusBadRequest},
		{"wrong secret", base64.StdEncoding.EncodeToString(Sign("nope", []byte(body))), http.StatusBadRequest},
		{"garbage", "%%%", http.StatusBadRequest},
	}

	router := setupSignatureRouter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
			if tc.signature != "" {
				req.Header.Set(SignatureHeader, tc.signature)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "Invalid signature")
			}
		})
	}
}

func TestLineSignature_EmptySecretRejectsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/callback", LineSignature("", zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "reached handler")
	})

	body := `{"events":[]}`
	forged := base64.StdEncoding.EncodeToString(Sign("", []byte(body)))
	for _, signature := range []string{forged, ""} {
		req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
		if signature != "" {
			req.Header.Set(SignatureHeader, signature)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "reached handler")
		assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
	}
}

func TestLineSignature_BodyTooLarge(t *testing.T) {
	body := strings.Repeat("a", maxWebhookBody+1)
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set(SignatureHeader, signed(body))
	w := httptest.NewRecorder()

	setupSignatureRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	require.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}
