package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshToken struct {
	Token     string    `gorm:"primaryKey"`
	UserID    int64     `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

type RefreshTokenDAO struct {
	db *gorm.DB
}

func NewRefreshTokenDAO(db *gorm.DB) *RefreshTokenDAO {
	return &RefreshTokenDAO{
		db: db,
	}
}

func (d *RefreshTokenDAO) Insert(ctx context.Context, token RefreshToken) error {
	return d.db.WithContext(ctx).Create(&token).Error
}

func (d *RefreshTokenDAO) FindByToken(ctx context.Context, token string) (RefreshToken, error) {
	var found RefreshToken

	result := d.db.WithContext(ctx).First(&found, "token = ?", token)
	if result.Error != nil {
		return RefreshToken{}, notFound(result.Error, ErrRefreshTokenNotFound)
	}

	return found, nil
}

// Rotate replaces old with next in one transaction. It fails when old was
// already used or revoked.
func (d *RefreshTokenDAO) Rotate(ctx context.Context, old string, next RefreshToken) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("token = ?", old).Delete(&RefreshToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRefreshTokenNotFound
		}

		return tx.Create(&next).Error
	})
}

func (d *RefreshTokenDAO) DeleteByToken(ctx context.Context, token string) error {
	return d.db.WithContext(ctx).Where("token = ?", token).Delete(&RefreshToken{}).Error
}
