// Package backend holds the dev server's business rules.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository"
)

var (
	ErrUserEmailExists     = repository.ErrUserEmailExists
	ErrWrongPassword       = errors.New("wrong password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User, passwordHash string) (domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindPasswordHash(ctx context.Context, id int64) (string, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token repository.RefreshToken) error
	Find(ctx context.Context, token string) (repository.RefreshToken, error)
	Rotate(ctx context.Context, old string, next repository.RefreshToken) error
	Delete(ctx context.Context, token string) error
}

type AuthService struct {
	repo       AuthUserRepository
	tokens     RefreshTokenRepository
	refreshTTL time.Duration
}

func NewAuthService(repo AuthUserRepository, tokens RefreshTokenRepository, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		repo:       repo,
		tokens:     tokens,
		refreshTTL: refreshTTL,
	}
}

func (s *AuthService) Signup(ctx context.Context, user domain.User, password string) (domain.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user.Role = domain.RoleUser

	created, err := s.repo.Create(ctx, user, hash)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	hash, err := s.repo.FindPasswordHash(ctx, user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindPasswordHash -> %w", err)
	}
	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

// IssueRefreshToken starts a refresh token chain for userID.
func (s *AuthService) IssueRefreshToken(ctx context.Context, userID int64) (repository.RefreshToken, error) {
	rt := s.newRefreshToken(userID)
	if err := s.tokens.Create(ctx, rt); err != nil {
		return repository.RefreshToken{}, fmt.Errorf("s.tokens.Create -> %w", err)
	}

	return rt, nil
}

// Refresh exchanges a refresh token for a new one. The old token stops
// working.
func (s *AuthService) Refresh(ctx context.Context, token string) (domain.User, repository.RefreshToken, error) {
	if token == "" {
		return domain.User{}, repository.RefreshToken{}, ErrInvalidRefreshToken
	}

	current, err := s.tokens.Find(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return domain.User{}, repository.RefreshToken{}, ErrInvalidRefreshToken
		}
		return domain.User{}, repository.RefreshToken{}, fmt.Errorf("s.tokens.Find -> %w", err)
	}
	if time.Now().After(current.ExpiresAt) {
		_ = s.tokens.Delete(ctx, token)
		return domain.User{}, repository.RefreshToken{}, ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, repository.RefreshToken{}, ErrInvalidRefreshToken
		}
		return domain.User{}, repository.RefreshToken{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	next := s.newRefreshToken(user.ID)
	if err = s.tokens.Rotate(ctx, token, next); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return domain.User{}, repository.RefreshToken{}, ErrInvalidRefreshToken
		}
		return domain.User{}, repository.RefreshToken{}, fmt.Errorf("s.tokens.Rotate -> %w", err)
	}

	return user, next, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		return fmt.Errorf("s.tokens.Delete -> %w", err)
	}

	return nil
}

func (s *AuthService) newRefreshToken(userID int64) repository.RefreshToken {
	return repository.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
}

// Helper function for password hashing
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}
	return string(hash), nil
}
