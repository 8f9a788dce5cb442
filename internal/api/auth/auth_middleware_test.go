package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-food-recommender/config"
	"github.com/FACorreiaa/go-food-recommender/internal/types"
)

const testSecret = "test-secret"

func setupMiddlewareTest(t *testing.T, cfg config.JWTConfig) (http.Handler, *string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seen := new(string)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		*seen = userID
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(logger, cfg)(next), seen
}

func signToken(t *testing.T, secret string, claims *types.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID string) *types.Claims {
	return &types.Claims{
		UserID: userID,
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "go-food-recommender",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func serve(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthenticate(t *testing.T) {
	cfg := config.JWTConfig{SecretKey: testSecret, Issuer: "go-food-recommender"}
	userID := "3f8a2c1e-7d44-4b0a-9c55-1f2e3d4c5b6a"

	t.Run("valid token passes user id downstream", func(t *testing.T) {
		handler, seen := setupMiddlewareTest(t, cfg)
		rr := serve(handler, "Bearer "+signToken(t, testSecret, validClaims(userID)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID, *seen)
	})

	t.Run("subject is used when user_id is absent", func(t *testing.T) {
		handler, seen := setupMiddlewareTest(t, cfg)
		claims := validClaims("")
		claims.Subject = userID
		rr := serve(handler, "Bearer "+signToken(t, testSecret, claims))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, userID, *seen)
	})

	t.Run("missing header", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, cfg)
		rr := serve(handler, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Authorization header required", decodeMessage(t, rr))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, cfg)
		rr := serve(handler, "Basic abc")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, cfg)
		claims := validClaims(userID)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		rr := serve(handler, "Bearer "+signToken(t, testSecret, claims))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Token has expired", decodeMessage(t, rr))
	})

	t.Run("token without expiry", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, cfg)
		claims := validClaims(userID)
		claims.ExpiresAt = nil
		rr := serve(handler, "Bearer "+signToken(t, testSecret, claims))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, cfg)
		rr := serve(handler, "Bearer "+signToken(t, "other-secret", validClaims(userID)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid token signature", decodeMessage(t, rr))
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, cfg)
		claims := validClaims(userID)
		claims.Issuer = "someone-else"
		rr := serve(handler, "Bearer "+signToken(t, testSecret, claims))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid token issuer", decodeMessage(t, rr))
	})

	t.Run("audience mismatch", func(t *testing.T) {
		handler, _ := setupMiddlewareTest(t, config.JWTConfig{SecretKey: testSecret, Audience: "food-app"})
		claims := validClaims(userID)
		claims.Audience = jwt.ClaimStrings{"other-app"}
		rr := serve(handler, "Bearer "+signToken(t, testSecret, claims))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid token audience", decodeMessage(t, rr))
	})

	t.Run("empty secret panics at construction", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		assert.Panics(t, func() { Authenticate(logger, config.JWTConfig{}) })
	})
}
