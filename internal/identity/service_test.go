package identity

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterNormalizesPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Register(ctx, "Asha", "98765 43210")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Phone != "+919876543210" {
		t.Fatalf("expected normalized phone, got %s", user.Phone)
	}

	// Lookup accepts any accepted input form of the same number.
	found, err := svc.Lookup(ctx, "+91-9876543210")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("lookup returned wrong user: %s", found.ID)
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Asha", "9876543210"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "Other Asha", "919876543210"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "  ", "9876543210"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Register(ctx, "Asha", "12345"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
	// Landline-style numbers starting below 6 are rejected.
	if _, err := svc.Register(ctx, "Asha", "1234567890"); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestNormalizePhoneForms(t *testing.T) {
	cases := map[string]string{
		"9876543210":      "+919876543210",
		"919876543210":    "+919876543210",
		"+91 98765 43210": "+919876543210",
		"098765-43210":    "", // leading zero makes 11 digits
	}
	for input, want := range cases {
		got, err := NormalizePhone(input)
		if want == "" {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", input, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q, got %q", input, want, got)
		}
	}
}

func TestStatCounters(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, _ := svc.Register(ctx, "Asha", "9876543210")

	if err := repo.IncrementGroupsCreated(ctx, user.ID); err != nil {
		t.Fatalf("increment groups: %v", err)
	}
	if err := repo.AddSpent(ctx, user.ID, 30_000); err != nil {
		t.Fatalf("add spent: %v", err)
	}

	updated, _ := svc.Get(ctx, user.ID)
	if updated.GroupsCreated != 1 || updated.TotalSpent != 30_000 {
		t.Fatalf("stats not updated: %+v", updated)
	}

	if err := repo.AddSpent(ctx, "missing", 100); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
