package server

import (
	"context"

	"reelhub/internal/models"
	"reelhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type feedFunc func(ctx context.Context, page models.PageRequest, viewerID uint) (*models.VideoPage, error)

// serveFeed runs one of the paginated feeds for the caller.
func (s *Server) serveFeed(c *fiber.Ctx, feed feedFunc) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := feed(ctx, parsePage(c), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetRecommendedVideos handles GET /api/videos/recommended
// @Summary Recommended feed
// @Description Public videos ranked by views, then likes, then recency.
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.VideoPage
// @Router /videos/recommended [get]
func (s *Server) GetRecommendedVideos(c *fiber.Ctx) error {
	return s.serveFeed(c, s.feedService.Recommended)
}

// GetShortVideos handles GET /api/videos/short
// @Summary Short-form feed
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} models.VideoPage
// @Router /videos/short [get]
func (s *Server) GetShortVideos(c *fiber.Ctx) error {
	return s.serveFeed(c, s.feedService.Short)
}

// GetLongVideos handles GET /api/videos/long
// @Summary Long-form feed
// @Tags feeds
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.VideoPage
// @Router /videos/long [get]
func (s *Server) GetLongVideos(c *fiber.Ctx) error {
	return s.serveFeed(c, s.feedService.Long)
}

// SearchVideos handles GET /api/videos/search
// @Summary Search public videos
// @Tags feeds
// @Produce json
// @Param q query string false "Text matched against title and description"
// @Param category query string false "Category filter"
// @Param videoType query string false "short or long"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} models.VideoPage
// @Failure 400 {object} models.ErrorResponse
// @Router /videos/search [get]
func (s *Server) SearchVideos(c *fiber.Ctx) error {
	filter := service.SearchFilter{
		Query:     c.Query("q"),
		Category:  c.Query("category"),
		VideoType: c.Query("videoType"),
	}
	return s.serveFeed(c, func(ctx context.Context, page models.PageRequest, viewerID uint) (*models.VideoPage, error) {
		return s.feedService.Search(ctx, filter, page, viewerID)
	})
}
