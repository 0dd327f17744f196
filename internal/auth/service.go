package auth

import (
	"time"

	"github.com/travel-pay/travel_pay/internal/config"
	"github.com/travel-pay/travel_pay/internal/identity"
)

// Service issues access tokens. There are no credentials to verify: an
// account is claimed by knowing its phone number, so login is a lookup
// followed by token issuance.
type Service struct {
	cfg config.Config
}

// NewService creates the token service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Issue signs an access token for the user.
func (s *Service) Issue(user identity.User) (Token, error) {
	now := time.Now()
	exp := now.Add(s.cfg.AccessTokenTTL)
	claims := map[string]any{
		"sub":   user.ID,
		"phone": user.Phone,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, ExpiresIn: int64(time.Until(exp).Seconds())}, nil
}
