package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserEmailExists = errors.New("user email already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID int64 `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	PhoneNo   string
	Role      string `gorm:"not null"` // "USER" or "ADMIN"

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "users.email") {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id int64) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		return User{}, notFound(result.Error, ErrUserNotFound)
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		return User{}, notFound(result.Error, ErrUserNotFound)
	}

	return user, nil
}

// List returns one page of users ordered by id, and the number of users
// matching search.
func (d *UserDAO) List(ctx context.Context, offset, limit int, search string) ([]User, int64, error) {
	matching := func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where("LOWER(email || ' ' || first_name || ' ' || last_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&User{}).Scopes(matching).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := d.db.WithContext(ctx).Scopes(matching, page(offset, limit)).Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update overwrites the profile fields of user. The password and creation
// time are kept.
func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current User
		if err := tx.First(&current, user.ID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		user.Password = current.Password
		user.CreatedAt = current.CreatedAt
		if err := tx.Save(&user).Error; err != nil {
			if isUniqueViolation(err, "users.email") {
				return ErrUserEmailExists
			}
			return err
		}

		return nil
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

func (d *UserDAO) UpdatePassword(ctx context.Context, id int64, password string) error {
	result := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password", password)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes the user and every refresh token issued to them.
func (d *UserDAO) Delete(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return tx.Where("user_id = ?", id).Delete(&RefreshToken{}).Error
	})
}

func page(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Offset(offset)
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}
