package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNameRequired occurs when registration is attempted without a name.
var ErrNameRequired = errors.New("name is required")

// Service manages account lifecycle. There are no credentials: accounts are
// looked up by phone number only.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account under the normalized phone number.
func (s *Service) Register(ctx context.Context, name, phone string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrNameRequired
	}

	normalized, err := NormalizePhone(phone)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     normalized,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Lookup resolves an account by phone number.
func (s *Service) Lookup(ctx context.Context, phone string) (User, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return User{}, err
	}
	return s.repo.FindByPhone(ctx, normalized)
}

// Get resolves an account by identifier.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
