package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-edarshan/internal/config"
	"ms-edarshan/internal/logger"
)

func protectedRouter(v Verifier) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Middleware(v, logger.NewNop()))
		Routes(r)
	})
	return r
}

func TestMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	router := protectedRouter(NewHMACVerifier(testSecret))

	for _, header := range []string{"", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestMiddlewareExposesIdentity(t *testing.T) {
	token, err := IssueToken(testSecret, Identity{Subject: "admin-7", Email: "a@b.in"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedRouter(NewHMACVerifier(testSecret)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "admin-7", body["id"])
	assert.Equal(t, "a@b.in", body["email"])
}

func TestMiddlewareOpenWithoutVerifier(t *testing.T) {
	router := protectedRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// no identity is attached in open mode
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/user", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewVerifier(t *testing.T) {
	ctx := context.Background()

	v, err := NewVerifier(ctx, config.AuthConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewVerifier(ctx, config.AuthConfig{JWTSecret: testSecret}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &HMACVerifier{}, v)
}

func TestUserID(t *testing.T) {
	assert.Empty(t, UserID(context.Background()))
	ctx := WithIdentity(context.Background(), &Identity{Subject: "s-1"})
	assert.Equal(t, "s-1", UserID(ctx))
}
