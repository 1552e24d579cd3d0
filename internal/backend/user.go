package backend

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository"
)

var (
	ErrUserNotFound = repository.ErrUserNotFound
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User, passwordHash string) (domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	FindPasswordHash(ctx context.Context, id int64) (string, error)
	List(ctx context.Context, offset, limit int, search string) ([]domain.User, int, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int, search string) (domain.Page[domain.User], error) {
	page, limit = normalizePage(page, limit)

	users, total, err := s.repo.List(ctx, (page-1)*limit, limit, search)
	if err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return domain.Page[domain.User]{
		Items:      users,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

func (s *UserService) CreateUser(ctx context.Context, user domain.User, password string) (domain.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.repo.Create(ctx, user, hash)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// UpdateUser replaces the account details. An empty password keeps the
// current one.
func (s *UserService) UpdateUser(ctx context.Context, user domain.User, password string) (domain.User, error) {
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return domain.User{}, err
		}
		if err = s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
			return domain.User{}, fmt.Errorf("s.repo.UpdatePassword -> %w", err)
		}
	}

	return updated, nil
}

// UpdateProfile changes the fields a user may edit on their own account.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, firstName, lastName, phoneNo string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.PhoneNo = phoneNo

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	hash, err := s.repo.FindPasswordHash(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindPasswordHash -> %w", err)
	}
	if err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	newHash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(ctx, id, newHash); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, min(limit, maxPageSize)
}
