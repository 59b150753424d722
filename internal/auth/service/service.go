// Package service implements single-operator authentication: one
// account seeded from configuration, HMAC-signed access tokens.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadvox_backend/internal/auth/password"
	"leadvox_backend/internal/auth/repository"
	"leadvox_backend/platform/apperr"
	"leadvox_backend/platform/config"
	"leadvox_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

const accessTokenType = "access"

// Store is the persistence contract; *repository.Repository implements it.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (repository.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// Service implements login and account management for the operator.
type Service struct {
	repo Store
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// New creates the auth service.
func New(repo Store, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// EnsureOperator creates the operator account from configuration when
// no account with that email exists yet. Called once at startup.
func (s *Service) EnsureOperator(ctx context.Context, email, plainPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || plainPassword == "" {
		s.log.Warn("operator credentials not configured, skipping account seed")
		return nil
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	user, err := s.repo.CreateUser(ctx, email, hash)
	if err != nil {
		return err
	}
	s.log.Info("operator account created", "email", user.Email)
	return nil
}

// LoginResult carries the issued token and its expiry.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      uuid.UUID
	Email       string
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResult{}, err
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", user.Email, false, "wrong password")
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	expiresAt := time.Now().Add(s.cfg.GetAccessTokenTTL())
	accessToken, err := s.signJWT(user, expiresAt)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return LoginResult{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	if err := password.Compare(user.PasswordHash, current); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}

	hash, err := password.Hash(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// GetUser fetches the authenticated operator's account.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, apperr.NotFound("user not found")
		}
		return repository.User{}, err
	}
	return user, nil
}

func (s *Service) signJWT(user repository.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"type":  accessTokenType,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
