package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/travel-pay/travel_pay/internal/auth"
)

// RegisterAuthRoutes wires the public login endpoint. Logout needs a valid
// token and is registered on the protected group.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}
