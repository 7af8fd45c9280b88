package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalton/taskwell-api/internal/service/auth"
)

// stubJWTService validates any token as the configured user, or fails
// with the configured error.
type stubJWTService struct {
	userID uuid.UUID
	err    error
}

func (s *stubJWTService) GenerateToken(context.Context, uuid.UUID) (string, error) {
	return "token", nil
}

func (s *stubJWTService) ValidateToken(context.Context, string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Claims{UserID: s.userID}, nil
}

func (s *stubJWTService) GenerateRefreshToken(context.Context, uuid.UUID) (string, error) {
	return "refresh", nil
}

func (s *stubJWTService) ValidateRefreshToken(context.Context, string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Claims{UserID: s.userID}, nil
}

func runThroughMiddleware(t *testing.T, jwt auth.JWTService, authHeader string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()

	var gotUserID uuid.UUID
	var handlerCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		gotUserID, _ = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	recorder := httptest.NewRecorder()
	NewAuthMiddleware(jwt).Authenticate(next).ServeHTTP(recorder, req)
	return recorder, gotUserID, handlerCalled
}

func TestAuthenticatePassesValidToken(t *testing.T) {
	userID := uuid.New()
	recorder, gotUserID, called := runThroughMiddleware(t, &stubJWTService{userID: userID}, "Bearer sometoken")

	require.True(t, called)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, userID, gotUserID)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	recorder, _, called := runThroughMiddleware(t, &stubJWTService{userID: uuid.New()}, "")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	recorder, _, called := runThroughMiddleware(t, &stubJWTService{userID: uuid.New()}, "Token abc")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	recorder, _, called := runThroughMiddleware(t, &stubJWTService{err: auth.ErrExpiredToken}, "Bearer expired")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Token expired")
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	recorder, _, called := runThroughMiddleware(t, &stubJWTService{err: auth.ErrInvalidToken}, "Bearer bogus")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
