package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/travel-pay/travel_pay/internal/auth"
	"github.com/travel-pay/travel_pay/internal/config"
	"github.com/travel-pay/travel_pay/internal/identity"
)

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	cfg := testConfig()
	token, err := auth.NewService(cfg).Issue(identity.User{ID: "u1", Name: "Arjun"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	app := fiber.New()
	app.Use(JWTAuth(cfg))
	app.Get("/group", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		return c.SendString(userID)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/group", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.AccessToken)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestJWTAuthRejectsTamperedToken(t *testing.T) {
	cfg := testConfig()
	token, err := auth.NewService(config.Config{JWTSecret: "other", AccessTokenTTL: time.Hour}).Issue(identity.User{ID: "u1"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	app := fiber.New()
	app.Use(JWTAuth(cfg))
	app.Get("/group", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(fiber.MethodGet, "/group", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.AccessToken)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
