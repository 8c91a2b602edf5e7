package users

import (
	"context"
	"errors"
	"testing"

	"medlense-backend/internal/shared/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, token, err := svc.Register(context.Background(), "Amara Osei", "Amara@Example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" || token == "" {
		t.Fatalf("expected user id and token, got %+v", user)
	}
	if user.Email != "amara@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatalf("password stored in plain text")
	}

	claims, err := auth.VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != user.ID {
		t.Fatalf("token sub %q does not match user %q", claims.Sub, user.ID)
	}

	loggedIn, loginToken, err := svc.Login(context.Background(), "amara@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID || loginToken == "" {
		t.Fatalf("unexpected login result: %+v", loggedIn)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, _, err := svc.Register(context.Background(), "Amara", "amara@example.com", "short"); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, _, err := svc.Register(context.Background(), "Amara", "amara@example.com", "correct-horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "Imposter", "amara@example.com", "battery-staple"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, _, err := svc.Register(context.Background(), "Amara", "amara@example.com", "correct-horse"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "amara@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
