package service

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/eventreg/regclient/internal/credential"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/pkg/rules"
)

type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhoneNo   string `json:"phoneNo,omitempty"`
}

func (in *ProfileInput) Validate() error {
	return validation.ValidateStruct(
		in,
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.PhoneNo, validation.Length(0, 30)),
	)
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

func (in *ChangePasswordInput) Validate() error {
	err := validation.ValidateStruct(
		in,
		validation.Field(&in.CurrentPassword, validation.Required),
		validation.Field(&in.NewPassword, validation.Required, rules.Password),
	)
	if err != nil {
		return err
	}

	if in.ConfirmPassword != "" && in.NewPassword != in.ConfirmPassword {
		return errConfirmPasswordMismatch
	}

	return nil
}

// UserInput is the admin view of an account. Password is required on
// create and optional on update.
type UserInput struct {
	Email     string      `json:"email"`
	Password  string      `json:"password,omitempty"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	PhoneNo   string      `json:"phoneNo,omitempty"`
	Role      domain.Role `json:"role"`
}

func (in *UserInput) Validate() error {
	return validation.ValidateStruct(
		in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, rules.Password),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Role, validation.Required, validation.In(domain.RoleUser, domain.RoleAdmin)),
	)
}

type UserService struct {
	gw    Requester
	creds credential.Store
}

func NewUserService(gw Requester, creds credential.Store) *UserService {
	return &UserService{
		gw:    gw,
		creds: creds,
	}
}

func (s *UserService) Profile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := s.gw.DoJSON(ctx, http.MethodGet, "/users/profile", nil, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return user, nil
}

// UpdateProfile saves the signed-in user's details and refreshes the stored
// copy of the user.
func (s *UserService) UpdateProfile(ctx context.Context, in ProfileInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := s.gw.DoJSON(ctx, http.MethodPut, "/users/profile", in, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	h, err := s.creds.Get(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.creds.Get -> %w", err)
	}
	if h.IsAuthenticated() {
		h.User = &user
		if err = s.creds.Set(ctx, h); err != nil {
			return domain.User{}, fmt.Errorf("s.creds.Set -> %w", err)
		}
	}

	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	if _, err := s.gw.Do(ctx, http.MethodPut, "/users/change-password", in); err != nil {
		return fmt.Errorf("s.gw.Do -> %w", err)
	}

	return nil
}

func (s *UserService) List(ctx context.Context, opts ListOptions) (domain.Page[domain.User], error) {
	opts.Public = false

	var page domain.Page[domain.User]
	if err := s.gw.DoJSON(ctx, http.MethodGet, "/users", nil, &page, opts.requestOptions()...); err != nil {
		return domain.Page[domain.User]{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return page, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	if err := s.gw.DoJSON(ctx, http.MethodGet, userPath(id), nil, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return user, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (domain.User, error) {
	if err := validation.Validate(in.Password, validation.Required); err != nil {
		return domain.User{}, validation.Errors{"password": err}
	}
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := s.gw.DoJSON(ctx, http.MethodPost, "/users", in, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := s.gw.DoJSON(ctx, http.MethodPut, userPath(id), in, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.gw.Do(ctx, http.MethodDelete, userPath(id), nil); err != nil {
		return fmt.Errorf("s.gw.Do -> %w", err)
	}

	return nil
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
