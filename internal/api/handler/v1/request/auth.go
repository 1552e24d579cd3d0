package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/eventreg/regclient/internal/pkg/rules"
)

var (
	errConfirmPasswordMismatch = errors.New("confirm password doesn't match the password")
)

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNo         string `json:"phoneNo,omitempty"`
}

func (req *SignupRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, rules.Password),
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.PhoneNo, validation.Length(0, 30)),
	)
	if err != nil {
		return err
	}

	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return errConfirmPasswordMismatch
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}
