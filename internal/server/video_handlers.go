package server

import (
	"reelhub/internal/notifications"
	"reelhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LikeResponse is the body of the video and comment like toggles.
type LikeResponse struct {
	Message   string `json:"message"`
	LikeCount int64  `json:"likeCount"`
	IsLiked   bool   `json:"isLiked"`
}

// DislikeResponse is the body of the video dislike toggle.
type DislikeResponse struct {
	Message      string `json:"message"`
	DislikeCount int64  `json:"dislikeCount"`
	IsDisliked   bool   `json:"isDisliked"`
}

// MessageResponse carries a confirmation message only.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateVideo handles POST /api/videos
// @Summary Publish a video record
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateVideoInput true "Video metadata"
// @Success 201 {object} models.VideoView
// @Failure 400 {object} models.ErrorResponse
// @Router /videos [post]
func (s *Server) CreateVideo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req service.CreateVideoInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	video, err := s.videoService.Create(ctx, userID, req)
	if err != nil {
		return respondError(c, err)
	}

	if video.IsPublic {
		s.publishUserEvent(notifications.EventVideoCreated, userID, 0, map[string]any{
			"videoId":   video.ID,
			"videoType": video.VideoType,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(video)
}

// GetVideo handles GET /api/videos/:id
// @Summary Get one video
// @Description Counts a view, then returns the video with its creator and top-level comments.
// @Tags videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} models.VideoDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id} [get]
func (s *Server) GetVideo(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	video, err := s.videoService.Get(ctx, id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(video)
}

// UpdateVideo handles PUT /api/videos/:id
// @Summary Update a video
// @Description Only the creator may update; omitted fields are left unchanged.
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Param request body service.UpdateVideoInput true "Fields to change"
// @Success 200 {object} models.VideoView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id} [put]
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateVideoInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	video, err := s.videoService.Update(ctx, id, userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(video)
}

// DeleteVideo handles DELETE /api/videos/:id
// @Summary Delete a video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id} [delete]
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.videoService.Delete(ctx, id, userID); err != nil {
		return respondError(c, err)
	}

	s.publishVideoEvent(notifications.EventVideoDeleted, userID, id, 0, nil)

	return c.JSON(MessageResponse{Message: "Video removed"})
}

// LikeVideo handles POST /api/videos/:id/like
// @Summary Toggle the caller's like on a video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id}/like [post]
func (s *Server) LikeVideo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := s.engagementService.ToggleLike(ctx, id, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishReaction(notifications.EventVideoLiked, notifications.EventVideoUnliked, userID, id, res)

	return c.JSON(LikeResponse{
		Message:   res.Message,
		LikeCount: res.Count,
		IsLiked:   res.Active,
	})
}

// DislikeVideo handles POST /api/videos/:id/dislike
// @Summary Toggle the caller's dislike on a video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Success 200 {object} DislikeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id}/dislike [post]
func (s *Server) DislikeVideo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := s.engagementService.ToggleDislike(ctx, id, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishReaction(notifications.EventVideoDisliked, notifications.EventVideoUndisliked, userID, id, res)

	return c.JSON(DislikeResponse{
		Message:      res.Message,
		DislikeCount: res.Count,
		IsDisliked:   res.Active,
	})
}
