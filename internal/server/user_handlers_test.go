package server

import (
	"net/http"
	"testing"

	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/users/register", fiber.Map{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "passw0rd1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, "body: %s", resp.Body)

	var out struct {
		Token    string      `json:"token"`
		ID       uint        `json:"id"`
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Role     models.Role `json:"role"`
		Password string      `json:"password"`
	}
	resp.decode(t, &out)
	assert.NotEmpty(t, out.Token)
	assert.NotZero(t, out.ID)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, "alice@example.com", out.Email)
	assert.Equal(t, models.RoleUser, out.Role)
	assert.Empty(t, out.Password)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"duplicate username", fiber.Map{"username": "alice", "email": "other@example.com", "password": "passw0rd1"}},
		{"duplicate email", fiber.Map{"username": "alice2", "email": "alice@example.com", "password": "passw0rd1"}},
		{"weak password", fiber.Map{"username": "bob", "email": "bob@example.com", "password": "password"}},
		{"bad email", fiber.Map{"username": "bob", "email": "bob", "password": "passw0rd1"}},
		{"short username", fiber.Map{"username": "b", "email": "bob@example.com", "password": "passw0rd1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, "/api/users/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, resp.Status, "body: %s", resp.Body)
		})
	}

	req := httptestRequest(http.MethodPost, "/api/users/register")
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	raw, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	_ = raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	user := ts.register(t, "alice")

	resp := ts.do(t, http.MethodPost, "/api/users/login", fiber.Map{
		"email":    "ALICE@example.com",
		"password": "passw0rd1",
	}, "")
	require.Equal(t, http.StatusOK, resp.Status, "body: %s", resp.Body)
	var out struct {
		Token string `json:"token"`
		ID    uint   `json:"id"`
	}
	resp.decode(t, &out)
	assert.Equal(t, user.ID, out.ID)

	// The issued token authenticates.
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/users/profile", nil, out.Token).Status)

	wrongPassword := ts.do(t, http.MethodPost, "/api/users/login", fiber.Map{"email": "alice@example.com", "password": "nope12345"}, "")
	unknownEmail := ts.do(t, http.MethodPost, "/api/users/login", fiber.Map{"email": "ghost@example.com", "password": "passw0rd1"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Status)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Status)
	assert.Equal(t, wrongPassword.errorBody(t).Message, unknownEmail.errorBody(t).Message)
}

func TestProfileRoutes(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	t.Run("own profile requires auth and includes email", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/users/profile", nil, "").Status)

		var me models.UserProfile
		ts.do(t, http.MethodGet, "/api/users/profile", nil, alice.Token).decode(t, &me)
		assert.Equal(t, alice.ID, me.ID)
		assert.Equal(t, "alice@example.com", me.Email)
	})

	t.Run("public profile hides email", func(t *testing.T) {
		var other models.UserProfile
		ts.do(t, http.MethodGet, "/api/users/"+itoa(alice.ID), nil, bob.Token).decode(t, &other)
		assert.Equal(t, "alice", other.Username)
		assert.Empty(t, other.Email)
		require.NotNil(t, other.IsFollowing)
		assert.False(t, *other.IsFollowing)

		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/users/99999", nil, "").Status)
	})

	t.Run("update profile", func(t *testing.T) {
		resp := ts.do(t, http.MethodPut, "/api/users/profile", fiber.Map{
			"bio":    "hello",
			"avatar": "https://cdn.example.com/a.png",
		}, alice.Token)
		require.Equal(t, http.StatusOK, resp.Status, "body: %s", resp.Body)
		var me models.UserProfile
		resp.decode(t, &me)
		assert.Equal(t, "hello", me.Bio)
		assert.Equal(t, "alice", me.Username)

		resp = ts.do(t, http.MethodPut, "/api/users/profile", fiber.Map{"username": "bob"}, alice.Token)
		assert.Equal(t, http.StatusBadRequest, resp.Status)

		resp = ts.do(t, http.MethodPut, "/api/users/profile", fiber.Map{"password": "newpassw0rd"}, alice.Token)
		require.Equal(t, http.StatusOK, resp.Status)
		login := ts.do(t, http.MethodPost, "/api/users/login", fiber.Map{"email": "alice@example.com", "password": "newpassw0rd"}, "")
		assert.Equal(t, http.StatusOK, login.Status)
	})
}

func TestFollowUnfollow(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	path := "/api/users/" + itoa(bob.ID) + "/follow"

	var res FollowResponse
	ts.do(t, http.MethodPost, path, nil, alice.Token).decode(t, &res)
	assert.Equal(t, FollowResponse{Message: "User followed", FollowerCount: 1, IsFollowing: true}, res)

	// Following twice is idempotent.
	ts.do(t, http.MethodPost, path, nil, alice.Token).decode(t, &res)
	assert.Equal(t, int64(1), res.FollowerCount)

	var profile models.UserProfile
	ts.do(t, http.MethodGet, "/api/users/"+itoa(bob.ID), nil, alice.Token).decode(t, &profile)
	assert.Equal(t, []uint{alice.ID}, profile.Followers)
	require.NotNil(t, profile.IsFollowing)
	assert.True(t, *profile.IsFollowing)

	ts.do(t, http.MethodDelete, path, nil, alice.Token).decode(t, &res)
	assert.Equal(t, FollowResponse{Message: "User unfollowed", FollowerCount: 0, IsFollowing: false}, res)

	self := ts.do(t, http.MethodPost, "/api/users/"+itoa(alice.ID)+"/follow", nil, alice.Token)
	assert.Equal(t, http.StatusBadRequest, self.Status)
	assert.Equal(t, "You cannot follow yourself", self.errorBody(t).Message)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/users/99999/follow", nil, alice.Token).Status)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, path, nil, "").Status)
}

func TestGetUserVideos(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	ts.upload(t, alice, fiber.Map{"title": "public"})
	ts.upload(t, alice, fiber.Map{"title": "private", "isPublic": false})

	var page models.VideoPage
	ts.do(t, http.MethodGet, "/api/users/"+itoa(alice.ID)+"/videos", nil, bob.Token).decode(t, &page)
	assert.Equal(t, int64(1), page.TotalVideos)

	page = models.VideoPage{}
	ts.do(t, http.MethodGet, "/api/users/"+itoa(alice.ID)+"/videos", nil, alice.Token).decode(t, &page)
	assert.Equal(t, int64(2), page.TotalVideos)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/users/99999/videos", nil, "").Status)
}
