// Package credential holds the signed-in user's access token and identity,
// and persists them across restarts.
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eventreg/regclient/internal/domain"
)

// Storage keys, shared by every persistent store.
const (
	keyAccessToken = "accessToken"
	keyUser        = "user"
)

var ErrNoExpiry = errors.New("token has no expiry")

type Holder struct {
	AccessToken string       `json:"accessToken,omitempty"`
	User        *domain.User `json:"user,omitempty"`
}

func (h Holder) IsAuthenticated() bool {
	return h.AccessToken != ""
}

// Role returns the role of the stored user, or "" when nobody is signed in.
func (h Holder) Role() domain.Role {
	if h.User == nil {
		return ""
	}
	return h.User.Role
}

// ExpiresAt reads the exp claim of the access token without verifying its
// signature; the client never holds the signing key.
func (h Holder) ExpiresAt() (time.Time, error) {
	return TokenExpiry(h.AccessToken)
}

type Store interface {
	Get(ctx context.Context) (Holder, error)
	Set(ctx context.Context, h Holder) error
	SetAccessToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("jwt.ParseUnverified -> %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}
