package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/eventreg/regclient/internal/repository/dao"
)

type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

type RefreshTokenDAO interface {
	Insert(ctx context.Context, token dao.RefreshToken) error
	FindByToken(ctx context.Context, token string) (dao.RefreshToken, error)
	Rotate(ctx context.Context, old string, next dao.RefreshToken) error
	DeleteByToken(ctx context.Context, token string) error
}

type RefreshTokenRepository struct {
	dao RefreshTokenDAO
}

func NewRefreshTokenRepository(dao RefreshTokenDAO) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		dao: dao,
	}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token RefreshToken) error {
	if err := r.dao.Insert(ctx, domainToTokenDAO(token)); err != nil {
		return fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) Find(ctx context.Context, token string) (RefreshToken, error) {
	found, err := r.dao.FindByToken(ctx, token)
	if err != nil {
		return RefreshToken{}, fmt.Errorf("r.dao.FindByToken -> %w", err)
	}

	return RefreshToken{
		Token:     found.Token,
		UserID:    found.UserID,
		ExpiresAt: found.ExpiresAt,
	}, nil
}

// Rotate atomically replaces old with next. It fails when old was already
// used or revoked.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, old string, next RefreshToken) error {
	if err := r.dao.Rotate(ctx, old, domainToTokenDAO(next)); err != nil {
		return fmt.Errorf("r.dao.Rotate -> %w", err)
	}

	return nil
}

// Delete revokes token. Revoking an unknown token is not an error.
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	if err := r.dao.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("r.dao.DeleteByToken -> %w", err)
	}

	return nil
}

func domainToTokenDAO(token RefreshToken) dao.RefreshToken {
	return dao.RefreshToken{
		Token:     token.Token,
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
	}
}
