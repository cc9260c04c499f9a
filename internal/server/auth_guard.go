package server

import (
	"context"
	"errors"

	"reelhub/internal/middleware"
	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

var errUnknownUser = errors.New("token subject does not exist")

// AuthRequired returns the authentication middleware. Requests without a
// valid bearer token for an existing user are rejected with 401 before the
// handler runs.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := s.resolveIdentity(c)
		if err != nil {
			switch {
			case errors.Is(err, middleware.ErrMissingToken):
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Authorization required"))
			case errors.Is(err, middleware.ErrInvalidToken), errors.Is(err, errUnknownUser):
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired token"))
			default:
				return respondError(c, err)
			}
		}

		attachIdentity(c, identity)
		return c.Next()
	}
}

// AuthOptional attaches the caller's identity when a valid token is present
// and otherwise lets the request through anonymously.
func (s *Server) AuthOptional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity, err := s.resolveIdentity(c); err == nil {
			attachIdentity(c, identity)
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that the identity is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := c.Locals("identity").(models.Identity)
		if !ok || identity.Role != models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

func (s *Server) resolveIdentity(c *fiber.Ctx) (models.Identity, error) {
	userID, err := s.tokens.Verify(middleware.BearerToken(c))
	if err != nil {
		return models.Identity{}, err
	}

	identity, err := s.userRepo.GetIdentity(c.UserContext(), userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return models.Identity{}, errUnknownUser
		}
		return models.Identity{}, err
	}
	return identity, nil
}

func attachIdentity(c *fiber.Ctx, identity models.Identity) {
	c.Locals("userID", identity.ID)
	c.Locals("identity", identity)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, identity.ID)
	c.SetUserContext(ctx)
}
