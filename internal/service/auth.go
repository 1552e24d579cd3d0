package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/eventreg/regclient/internal/credential"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/gateway"
	"github.com/eventreg/regclient/internal/pkg/rules"
)

var (
	errConfirmPasswordMismatch = errors.New("confirm password doesn't match the password")
)

type RegisterInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNo         string `json:"phoneNo,omitempty"`
}

func (in *RegisterInput) Validate() error {
	err := validation.ValidateStruct(
		in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, rules.Password),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 100)),
	)
	if err != nil {
		return err
	}

	if in.ConfirmPassword != "" && in.Password != in.ConfirmPassword {
		return errConfirmPasswordMismatch
	}

	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *LoginInput) Validate() error {
	return validation.ValidateStruct(
		in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	)
}

type AuthService struct {
	gw    Requester
	creds credential.Store
}

func NewAuthService(gw Requester, creds credential.Store) *AuthService {
	return &AuthService{
		gw:    gw,
		creds: creds,
	}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	var data domain.AuthData
	if err := s.gw.DoJSON(ctx, http.MethodPost, "/auth/register", in, &data, gateway.Public()); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	if err := s.signIn(ctx, data); err != nil {
		return domain.User{}, err
	}

	return data.User, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	in := LoginInput{Email: email, Password: password}
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}

	var data domain.AuthData
	if err := s.gw.DoJSON(ctx, http.MethodPost, gateway.PathLogin, in, &data, gateway.Public()); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	if err := s.signIn(ctx, data); err != nil {
		return domain.User{}, err
	}

	return data.User, nil
}

// Logout revokes the refresh token. Local credentials are cleared even when
// the backend call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	_, callErr := s.gw.Do(ctx, http.MethodPost, gateway.PathLogout, nil)

	if err := s.creds.Clear(ctx); err != nil {
		return fmt.Errorf("s.creds.Clear -> %w", err)
	}
	if callErr != nil && !errors.Is(callErr, ErrSessionExpired) {
		return fmt.Errorf("s.gw.Do -> %w", callErr)
	}

	return nil
}

// CurrentUser returns the stored user, or false when nobody is signed in.
func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	h, err := s.creds.Get(ctx)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("s.creds.Get -> %w", err)
	}
	if !h.IsAuthenticated() || h.User == nil {
		return domain.User{}, false, nil
	}

	return *h.User, true, nil
}

func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	h, err := s.creds.Get(ctx)
	if err != nil {
		return false
	}
	return h.IsAuthenticated()
}

func (s *AuthService) signIn(ctx context.Context, data domain.AuthData) error {
	if data.AccessToken == "" {
		return errors.New("auth response carries no access token")
	}

	user := data.User
	if err := s.creds.Set(ctx, credential.Holder{AccessToken: data.AccessToken, User: &user}); err != nil {
		return fmt.Errorf("s.creds.Set -> %w", err)
	}

	return nil
}
