package request

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/eventreg/regclient/internal/domain"
)

type RegistrationRequest struct {
	domain.RegistrationRequest
}

func (req *RegistrationRequest) Validate() error {
	err := validation.ValidateStruct(
		&req.RegistrationRequest,
		validation.Field(&req.EventID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Participants, validation.Required),
	)
	if err != nil {
		return err
	}

	errs := validation.Errors{}
	for i := range req.Participants {
		p := &req.Participants[i]
		err := validation.ValidateStruct(
			p,
			validation.Field(&p.Email, validation.Required, is.Email),
			validation.Field(&p.FirstName, validation.Required, validation.Length(1, 100)),
			validation.Field(&p.LastName, validation.Required, validation.Length(1, 100)),
		)
		if err != nil {
			errs[fmt.Sprintf("participants_%d", i)] = err
		}
	}

	return errs.Filter()
}
