package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourism-backend/internal/engine"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := GenerateAccessToken("ops", []string{"admin"}, secret, time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, []string{"admin"}, claims.Roles)

	_, err = ParseAccessToken(tok, "other-secret")
	assert.Error(t, err)
}

func TestParseAccessToken_Expired(t *testing.T) {
	tok, err := GenerateAccessToken("ops", nil, secret, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = ParseAccessToken(tok, secret)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: engine.ErrorHandler(zap.NewNop())})
	app.Get("/admin", AuthMiddleware(secret), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString(PrincipalFrom(c).Subject)
	})

	admin, err := GenerateAccessToken("ops", []string{"admin"}, secret, 0)
	require.NoError(t, err)
	editor, err := GenerateAccessToken("ed", []string{"editor"}, secret, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad format", "Token " + admin, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"not admin", "Bearer " + editor, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestPrincipal_HasRole(t *testing.T) {
	assert.True(t, (&Principal{Roles: []string{"editor", RoleAdmin}}).HasRole(RoleAdmin))
	assert.False(t, (&Principal{Roles: []string{"editor"}}).HasRole(RoleAdmin))
}
