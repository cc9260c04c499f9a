package server

import "github.com/gofiber/fiber/v2"

// FeatureFlagsResponse lists configured flags and their state for the caller.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flag state
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FeatureFlagsResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(FeatureFlagsResponse{
			Raw:       map[string]string{},
			Evaluated: map[string]bool{},
		})
	}

	return c.JSON(FeatureFlagsResponse{
		Raw:       s.featureFlags.Raw(),
		Evaluated: s.featureFlags.Snapshot(currentUserID(c)),
	})
}
