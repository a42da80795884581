package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hifushiri/rostelecom-backend/internal/config"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues bearer tokens and manages accounts. It is a collaborator
// of the mutation engine, not part of it: downstream services only ever see
// the authenticated user id and role.
type AuthService struct {
	repos  *repository.Repositories
	rdb    *redis.Client
	jwtCfg config.JWTConfig
}

func NewAuthService(repos *repository.Repositories, rdb *redis.Client, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{repos: repos, rdb: rdb, jwtCfg: jwtCfg}
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login verifies credentials and signs a token carrying the identity the
// core needs: user id for audit attribution and role for route gating.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.repos.User.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"uid":  user.ID,
		"name": user.Username,
		"role": user.Role,
		"iss":  s.jwtCfg.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.jwtCfg.ExpiresIn).Unix(),
		"jti":  uuid.New().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Logout revokes a token by storing its jti in redis until the token would
// have expired anyway. With no redis configured, logout is a no-op and
// tokens simply age out.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, "revoked:"+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (s *AuthService) CreateUser(ctx context.Context, in *CreateUserInput) (*entity.User, error) {
	switch in.Role {
	case entity.RoleAdmin, entity.RoleAnalyst, entity.RoleUser:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", in.Role, ErrConstraintViolation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &entity.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.repos.User.List(ctx)
}
