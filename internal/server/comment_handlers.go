package server

import (
	"reelhub/internal/notifications"
	"reelhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetVideoComments returns a video's top-level comments (auth optional)
// @Summary List a video's comments
// @Tags comments
// @Produce json
// @Param id path int true "Video ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.CommentPage
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id}/comments [get]
func (s *Server) GetVideoComments(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := s.commentService.ListByVideo(ctx, videoID, parsePage(c), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreateComment creates a comment or reply on a video (protected)
// @Summary Comment on a video
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Video ID"
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	videoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CreateCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = userID
	req.VideoID = videoID

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := s.commentService.CreateComment(ctx, req)
	if err != nil {
		return respondError(c, err)
	}

	s.publishVideoEvent(notifications.EventCommentCreated, userID, videoID, 0, map[string]any{
		"commentId": created.ID,
		"parentId":  created.ParentID,
	})

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetCommentReplies returns the direct replies to a comment (auth optional)
// @Summary List replies to a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.CommentPage
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/replies [get]
func (s *Server) GetCommentReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := s.commentService.ListReplies(ctx, commentID, parsePage(c), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// UpdateComment edits a comment (author only)
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body service.UpdateCommentInput true "New content"
// @Success 200 {object} models.CommentView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = userID
	req.CommentID = commentID

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := s.commentService.UpdateComment(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// DeleteComment soft-deletes a comment (author or video creator)
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.commentService.DeleteComment(ctx, userID, commentID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Comment deleted"})
}

// LikeComment toggles the caller's like on a comment (protected)
// @Summary Toggle the caller's like on a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/like [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := s.engagementService.ToggleCommentLike(ctx, commentID, userID)
	if err != nil {
		return respondError(c, err)
	}

	if res.Active {
		s.publishUserEvent(notifications.EventCommentLiked, userID, 0, map[string]any{
			"commentId": commentID,
			"likeCount": res.Count,
		})
	}

	return c.JSON(LikeResponse{
		Message:   res.Message,
		LikeCount: res.Count,
		IsLiked:   res.Active,
	})
}
