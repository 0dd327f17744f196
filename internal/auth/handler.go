package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/travel-pay/travel_pay/internal/identity"
)

// TripSessions is the slice of the trip service the handler needs to release
// a user's live session on logout.
type TripSessions interface {
	Logout(ctx context.Context, userID string) error
}

// Handler exposes the login and logout endpoints.
type Handler struct {
	ids   *identity.Service
	svc   *Service
	trips TripSessions
}

// NewHandler wires the auth handler.
func NewHandler(ids *identity.Service, svc *Service, trips TripSessions) *Handler {
	return &Handler{ids: ids, svc: svc, trips: trips}
}

type loginRequest struct {
	Phone string `json:"phone"`
}

type loginResponse struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login resolves the account by phone number and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.ids.Lookup(c.UserContext(), req.Phone)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "no account for this phone")
		}
		if errors.Is(err, identity.ErrInvalidPhone) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.svc.Issue(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		UserID:      user.ID,
		Name:        user.Name,
		AccessToken: token.AccessToken,
		ExpiresIn:   token.ExpiresIn,
	})
}

// Logout releases the caller's live trip session. Tokens stay valid until
// they expire; the session snapshot survives for the next login.
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing user")
	}
	if err := h.trips.Logout(c.UserContext(), userID); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
