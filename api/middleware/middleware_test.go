package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanmarket/cart-backend/pkg/logger"
)

func TestRequestIDEchoesOrMints(t *testing.T) {
	handler := RequestID(logger.Nop())(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, "req-42", resp.Header().Get("X-Request-Id"))
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, rec.Status())

	_, _ = rec.Write([]byte("abc"))
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rec.Status())
	assert.Equal(t, 3, rec.bytes)
}

func TestCORSExposesCartSessionHeader(t *testing.T) {
	handler := CORS(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header().Get("Access-Control-Expose-Headers"), HeaderCartSession)
}
