package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	signed, expiresAt, err := GenerateToken("user-123", "a@x.com", secret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.True(t, expiresAt.After(time.Now()))

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", token)

	userID, err := UserIDFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	session, err := SessionFromContext(c)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", session.UserID)
	assert.Equal(t, "a@x.com", session.Email)
}

func TestGenerateTokenValidation(t *testing.T) {
	cases := []struct {
		name      string
		userID    string
		email     string
		secret    string
		expiresIn time.Duration
	}{
		{name: "missing user id", email: "a@x.com", secret: "s", expiresIn: time.Hour},
		{name: "missing email", userID: "u", secret: "s", expiresIn: time.Hour},
		{name: "missing secret", userID: "u", email: "a@x.com", expiresIn: time.Hour},
		{name: "non-positive expiry", userID: "u", email: "a@x.com", secret: "s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := GenerateToken(tc.userID, tc.email, tc.secret, tc.expiresIn)
			assert.Error(t, err)
		})
	}
}

func TestSessionFromContextRejectsUnverified(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_, err := SessionFromContext(c)
	assert.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
