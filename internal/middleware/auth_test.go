package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestTokenManagerRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	token, err := m.Issue(42, "alice")
	require.NoError(t, err)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenManagerVerify(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": strconv.Itoa(7),
			"iss": TokenIssuer,
			"aud": TokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	expired := base()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	wrongIssuer := base()
	wrongIssuer["iss"] = "someone-else"
	wrongAudience := base()
	wrongAudience["aud"] = "other-client"
	badSubject := base()
	badSubject["sub"] = "not-a-number"
	noExpiry := base()
	delete(noExpiry, "exp")

	tests := []struct {
		name    string
		token   string
		wantErr error
		wantID  uint
	}{
		{"Valid", sign(base(), testSecret), nil, 7},
		{"Missing", "", ErrMissingToken, 0},
		{"Malformed", "malformed.token.here", ErrInvalidToken, 0},
		{"Wrong Secret", sign(base(), "another-secret"), ErrInvalidToken, 0},
		{"Expired", sign(expired, testSecret), ErrInvalidToken, 0},
		{"Wrong Issuer", sign(wrongIssuer, testSecret), ErrInvalidToken, 0},
		{"Wrong Audience", sign(wrongAudience, testSecret), ErrInvalidToken, 0},
		{"Non Numeric Subject", sign(badSubject, testSecret), ErrInvalidToken, 0},
		{"No Expiry", sign(noExpiry, testSecret), ErrInvalidToken, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := m.Verify(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestTokenManagerRejectsNoneAlgorithm(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "iss": TokenIssuer, "aud": TokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(BearerToken(c))
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"Bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"Lowercase Scheme", "bearer abc", "abc"},
		{"Basic", "Basic dXNlcjpwYXNz", ""},
		{"Empty", "", ""},
		{"Extra Parts", "Bearer a b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
