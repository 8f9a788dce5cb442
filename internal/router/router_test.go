package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubRecommendationHandler struct {
	calls int
}

func (h *stubRecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	h.calls++
	w.WriteHeader(http.StatusOK)
}

func setupRouterTest(allow bool) (http.Handler, *stubRecommendationHandler) {
	handler := &stubRecommendationHandler{}
	authn := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	return SetupRouter(&Config{RecommendationHandler: handler, AuthenticateMiddleware: authn}), handler
}

func TestSetupRouter(t *testing.T) {
	t.Run("ping is public", func(t *testing.T) {
		r, _ := setupRouterTest(false)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong", rr.Body.String())
	})

	t.Run("recommendations require authentication", func(t *testing.T) {
		r, handler := setupRouterTest(false)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Zero(t, handler.calls)
	})

	t.Run("authenticated request reaches the handler", func(t *testing.T) {
		r, handler := setupRouterTest(true)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, handler.calls)
	})

	t.Run("only POST is routed", func(t *testing.T) {
		r, _ := setupRouterTest(true)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}
