package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildbarn/bb-pagesim/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestCORSHandler(t *testing.T) {
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("AllowAllPreflight", func(t *testing.T) {
		handler := api.NewCORSHandler(base, []string{"*"})
		r := httptest.NewRequest(http.MethodOptions, "/simulate", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		r.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
		require.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("AllowAllSimpleRequest", func(t *testing.T) {
		handler := api.NewCORSHandler(base, []string{"*"})
		r := httptest.NewRequest(http.MethodPost, "/simulate", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusTeapot, w.Code)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("ListedOriginNextToWildcard", func(t *testing.T) {
		// Explicitly listed origins keep receiving credentials.
		handler := api.NewCORSHandler(base, []string{"*", "http://localhost:5173/"})
		r := httptest.NewRequest(http.MethodPost, "/simulate", nil)
		r.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("NoOrigin", func(t *testing.T) {
		handler := api.NewCORSHandler(base, []string{"*"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusTeapot, w.Code)
		require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
