package server

import (
	"reelhub/internal/notifications"
	"reelhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FollowResponse is the body of follow and unfollow.
type FollowResponse struct {
	Message       string `json:"message"`
	FollowerCount int64  `json:"followerCount"`
	IsFollowing   bool   `json:"isFollowing"`
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := s.userService.GetProfile(ctx, id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMyProfile handles GET /api/users/profile
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} models.ErrorResponse
// @Router /users/profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := s.userService.GetProfile(ctx, userID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/profile
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Fields to change"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Router /users/profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := s.userService.UpdateProfile(ctx, userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// FollowUser handles POST /api/users/:id/follow
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	return s.changeFollow(c, true)
}

// UnfollowUser handles DELETE /api/users/:id/follow
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	return s.changeFollow(c, false)
}

func (s *Server) changeFollow(c *fiber.Ctx, follow bool) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	op, eventType := s.userService.Unfollow, notifications.EventUserUnfollowed
	if follow {
		op, eventType = s.userService.Follow, notifications.EventUserFollowed
	}
	res, err := op(ctx, userID, targetID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishUserEvent(eventType, userID, targetID, map[string]any{
		"followerCount": res.Count,
	})

	return c.JSON(FollowResponse{
		Message:       res.Message,
		FollowerCount: res.Count,
		IsFollowing:   res.Active,
	})
}

// GetUserVideos handles GET /api/users/:id/videos
// @Summary List a user's videos
// @Description Public videos only, unless the caller is the user.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.VideoPage
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/videos [get]
func (s *Server) GetUserVideos(c *fiber.Ctx) error {
	creatorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := s.feedService.ByCreator(ctx, creatorID, parsePage(c), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
