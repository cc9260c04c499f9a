package server

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"reelhub/internal/middleware"
	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	str, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return str
}

func claimsFor(userID uint, exp time.Duration) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": middleware.TokenIssuer,
		"aud": middleware.TokenAudience,
		"exp": now.Add(exp).Unix(),
		"iat": now.Unix(),
		"jti": "test-jti",
	}
}

func TestServer_AuthRequired(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "alice")

	app := fiber.New()
	app.Get("/probe", ts.AuthRequired(), func(c *fiber.Ctx) error {
		identity := c.Locals("identity").(models.Identity)
		ctxUser, _ := c.UserContext().Value(middleware.UserIDKey).(uint)
		return c.JSON(fiber.Map{"userID": c.Locals("userID"), "role": identity.Role, "ctxUser": ctxUser})
	})
	probe := &testServer{Server: ts.Server, app: app}

	wrongIssuer := claimsFor(user.ID, time.Hour)
	wrongIssuer["iss"] = "someone-else"
	wrongAudience := claimsFor(user.ID, time.Hour)
	wrongAudience["aud"] = "someone-else"
	badSubject := claimsFor(user.ID, time.Hour)
	badSubject["sub"] = "not-a-number"

	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "valid token", token: user.Token, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantMsg: "Authorization required"},
		{name: "wrong scheme", header: "Basic " + user.Token, wantStatus: http.StatusUnauthorized, wantMsg: "Authorization required"},
		{name: "garbage token", token: "not.a.jwt", wantStatus: http.StatusUnauthorized, wantMsg: "Invalid or expired token"},
		{name: "expired", token: signToken(t, testSecret, claimsFor(user.ID, -time.Hour)), wantStatus: http.StatusUnauthorized},
		{name: "bad signature", token: signToken(t, "another-secret-another-secret-another", claimsFor(user.ID, time.Hour)), wantStatus: http.StatusUnauthorized},
		{name: "wrong issuer", token: signToken(t, testSecret, wrongIssuer), wantStatus: http.StatusUnauthorized},
		{name: "wrong audience", token: signToken(t, testSecret, wrongAudience), wantStatus: http.StatusUnauthorized},
		{name: "non-numeric subject", token: signToken(t, testSecret, badSubject), wantStatus: http.StatusUnauthorized},
		{name: "unknown user", token: signToken(t, testSecret, claimsFor(9999, time.Hour)), wantStatus: http.StatusUnauthorized, wantMsg: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptestRequest(http.MethodGet, "/probe")
			switch {
			case tt.header != "":
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			case tt.token != "":
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)
			}
			resp, err := probe.app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				var body struct {
					UserID  uint        `json:"userID"`
					Role    models.Role `json:"role"`
					CtxUser uint        `json:"ctxUser"`
				}
				require.NoError(t, decodeBody(resp, &body))
				assert.Equal(t, user.ID, body.UserID)
				assert.Equal(t, user.ID, body.CtxUser)
				assert.Equal(t, models.RoleUser, body.Role)
				return
			}
			var body models.ErrorResponse
			require.NoError(t, decodeBody(resp, &body))
			assert.Equal(t, models.CodeUnauthorized, body.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}
}

func TestServer_AuthOptional(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "bob")

	app := fiber.New()
	app.Get("/probe", ts.AuthOptional(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": currentUserID(c), "hasIdentity": c.Locals("identity") != nil})
	})

	tests := []struct {
		name         string
		token        string
		wantUser     uint
		wantIdentity bool
	}{
		{"anonymous", "", 0, false},
		{"valid token", user.Token, user.ID, true},
		{"invalid token proceeds anonymously", "broken", 0, false},
		{"unknown user proceeds anonymously", signToken(t, testSecret, claimsFor(4242, time.Hour)), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptestRequest(http.MethodGet, "/probe")
			if tt.token != "" {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				UserID      uint `json:"userID"`
				HasIdentity bool `json:"hasIdentity"`
			}
			require.NoError(t, decodeBody(resp, &body))
			assert.Equal(t, tt.wantUser, body.UserID)
			assert.Equal(t, tt.wantIdentity, body.HasIdentity)
		})
	}
}

func TestServer_AdminRequired(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "carol")
	admin := ts.register(t, "root")
	require.NoError(t, ts.db.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.RoleAdmin).Error)

	resp := ts.do(t, http.MethodGet, "/api/admin/feature-flags", nil, user.Token)
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, models.CodeForbidden, resp.errorBody(t).Code)

	resp = ts.do(t, http.MethodGet, "/api/admin/feature-flags", nil, admin.Token)
	require.Equal(t, http.StatusOK, resp.Status, "body: %s", resp.Body)
	var flags FeatureFlagsResponse
	resp.decode(t, &flags)
	assert.Equal(t, "off", flags.Raw["view_dedup"])
	assert.False(t, flags.Evaluated["view_dedup"])

	resp = ts.do(t, http.MethodGet, "/api/admin/feature-flags", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}
