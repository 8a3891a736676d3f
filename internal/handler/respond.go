package handler

import (
	"errors"

	"go-inventory-api/internal/apperror"
	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an unexpected infra failure.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPStatus).JSON(fiber.Map{"error": appErr.Message})
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

// requireActor pulls the authenticated identity set by RequireAuth.
func requireActor(c *fiber.Ctx) (model.Actor, error) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return model.Actor{}, apperror.ErrUnauthorized
	}
	return actor, nil
}

// Helper to parse UUID path params
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
