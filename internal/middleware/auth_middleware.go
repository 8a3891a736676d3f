package middleware

import (
	"strings"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// RequireAuth validates the bearer token, resolves the caller against the
// database once, and stores an explicit Actor in the request locals for
// downstream handlers.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(403).JSON(fiber.Map{"error": "Account is inactive. Please contact administrator"})
		}

		c.Locals(actorKey, user.Actor())
		return c.Next()
	}
}

// OptionalAuth resolves the caller when a valid bearer token is present
// but lets anonymous requests through. Used by registration so an admin
// creating a user is recorded as its creator.
func OptionalAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Next()
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Next()
		}

		if user, err := userRepo.FindByID(claims.UserID); err == nil && user.IsActive {
			c.Locals(actorKey, user.Actor())
		}
		return c.Next()
	}
}

// RequireAdmin gates a route to the admin role. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := c.Locals(actorKey).(model.Actor)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		if !actor.IsAdmin() {
			return c.Status(403).JSON(fiber.Map{"error": "Unauthorized. Admin access required"})
		}
		return c.Next()
	}
}

// ActorFromContext returns the Actor stored by RequireAuth.
func ActorFromContext(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(actorKey).(model.Actor)
	return actor, ok
}
