package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository/dao"
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id int64) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	List(ctx context.Context, offset, limit int, search string) ([]dao.User, int64, error)
	Update(ctx context.Context, user dao.User) (dao.User, error)
	UpdatePassword(ctx context.Context, id int64, password string) error
	Delete(ctx context.Context, id int64) error
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User, passwordHash string) (domain.User, error) {
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	created, err := r.dao.Insert(ctx, dao.User{
		Email:     normalizeEmail(user.Email),
		Password:  passwordHash,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		PhoneNo:   user.PhoneNo,
		Role:      string(user.Role),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindPasswordHash(ctx context.Context, id int64) (string, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return found.Password, nil
}

// List returns one page of users ordered by id, and the number of users
// matching search.
func (r *UserRepository) List(ctx context.Context, offset, limit int, search string) ([]domain.User, int, error) {
	found, total, err := r.dao.List(ctx, offset, limit, strings.TrimSpace(search))
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, r.daoToDomain(u))
	}

	return users, int(total), nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	updated, err := r.dao.Update(ctx, dao.User{
		ID:        user.ID,
		Email:     normalizeEmail(user.Email),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		PhoneNo:   user.PhoneNo,
		Role:      string(user.Role),
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if err := r.dao.UpdatePassword(ctx, id, passwordHash); err != nil {
		return fmt.Errorf("r.dao.UpdatePassword -> %w", err)
	}

	return nil
}

// Delete removes the user and every refresh token issued to them.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *UserRepository) daoToDomain(user dao.User) domain.User {
	return domain.User{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		PhoneNo:   user.PhoneNo,
		Role:      domain.Role(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
