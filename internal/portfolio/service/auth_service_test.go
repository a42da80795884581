package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/testutil"
)

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	user, err := svc.Auth.CreateUser(ctx, &CreateUserInput{
		Username: "analyst1",
		Password: "s3cret",
		Role:     entity.RoleAnalyst,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password stored unhashed")
	}

	token, err := svc.Auth.Login(ctx, "analyst1", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token.TokenType != "bearer" {
		t.Fatalf("expected bearer token, got %q", token.TokenType)
	}

	parsed, err := jwt.Parse(token.AccessToken, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testutil.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["role"] != entity.RoleAnalyst {
		t.Fatalf("expected role claim %q, got %v", entity.RoleAnalyst, claims["role"])
	}
	if uint(claims["uid"].(float64)) != user.ID {
		t.Fatalf("expected uid claim %d, got %v", user.ID, claims["uid"])
	}
	if claims["jti"] == "" {
		t.Fatal("expected a jti claim for revocation")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	if _, err := svc.Auth.CreateUser(ctx, &CreateUserInput{
		Username: "user1", Password: "correct", Role: entity.RoleUser,
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := svc.Auth.Login(ctx, "user1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Auth.Login(ctx, "ghost", "correct"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _ := setupServices(t)

	_, err := svc.Auth.CreateUser(context.Background(), &CreateUserInput{
		Username: "x", Password: "y", Role: "SUPERVISOR",
	})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	svc, _ := setupServices(t)

	if err := svc.Auth.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("expected nil-redis logout to be a no-op, got %v", err)
	}
}
