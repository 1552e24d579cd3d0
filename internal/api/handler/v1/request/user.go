package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/pkg/rules"
)

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhoneNo   string `json:"phoneNo"`
}

func (req *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.PhoneNo, validation.Length(0, 30)),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (req *ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CurrentPassword, validation.Required),
		validation.Field(&req.NewPassword, validation.Required, rules.Password),
	)
}

// UserRequest is used by admins to create and update accounts. Password is
// only required on create.
type UserRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	PhoneNo   string      `json:"phoneNo"`
	Role      domain.Role `json:"role"`
}

func (req *UserRequest) Validate(creating bool) error {
	passwordRules := []validation.Rule{rules.Password}
	if creating {
		passwordRules = append([]validation.Rule{validation.Required}, passwordRules...)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, passwordRules...),
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Role, validation.Required, validation.In(domain.RoleUser, domain.RoleAdmin)),
	)
}

func (req *UserRequest) ToDomain() domain.User {
	return domain.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhoneNo:   req.PhoneNo,
		Role:      req.Role,
	}
}
