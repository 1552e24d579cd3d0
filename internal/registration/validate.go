package registration

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/eventreg/regclient/internal/domain"
)

const patternTimeout = 100 * time.Millisecond

var (
	errTicketRequired   = errors.New("select at least one ticket")
	errAnswerRequired   = errors.New("an answer is required")
	errAnswerFormat     = errors.New("the answer does not match the expected format")
	errAnswerNotAllowed = errors.New("the answer is not one of the allowed options")
)

// Validate runs the checks the backend would reject a submission for.
// Errors are keyed ticket_<id>, participant_<n>_<field> and
// participant_<n>_question_<eventQuestionId>.
func (s *Session) Validate(now time.Time) error {
	if s.event == nil {
		return &ValidationError{Op: "Validate", Err: ErrMissingEvent}
	}

	errs := validation.Errors{}

	if !s.event.IsFree {
		if s.TotalSelectedTickets() == 0 {
			errs["tickets"] = errTicketRequired
		}
		for _, t := range s.tickets {
			if err := validateTicket(t, now); err != nil {
				errs[fmt.Sprintf("ticket_%d", t.TicketID)] = err
			}
		}
	}

	for i, p := range s.participants {
		if err := p.validate(); err != nil {
			var fieldErrs validation.Errors
			if errors.As(err, &fieldErrs) {
				for field, fieldErr := range fieldErrs {
					errs[fmt.Sprintf("participant_%d_%s", i, field)] = fieldErr
				}
			} else {
				errs[fmt.Sprintf("participant_%d", i)] = err
			}
		}
		for _, r := range p.Responses {
			if err := validateResponse(r); err != nil {
				errs[fmt.Sprintf("participant_%d_question_%d", i, r.EventQuestionID)] = err
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Op: "Validate", Err: errs}
}

func validateTicket(t TicketSelection, now time.Time) error {
	if t.Quantity == 0 {
		return nil
	}
	switch {
	case t.Status != "" && t.Status != domain.TicketStatusActive:
		return fmt.Errorf("%s is not available", t.Name)
	case !t.OnSale(now):
		return fmt.Errorf("%s is not on sale", t.Name)
	case t.QuantityTotal > 0 && t.Quantity > t.QuantityTotal-t.QuantitySold:
		return fmt.Errorf("only %d %s left", max(0, t.QuantityTotal-t.QuantitySold), t.Name)
	}
	return nil
}

func (p *Participant) validate() error {
	return validation.ValidateStruct(
		p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.FirstName, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&p.LastName, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&p.PhoneNumber, validation.RuneLength(0, 30)),
	)
}

func validateResponse(r Response) error {
	text := strings.TrimSpace(r.ResponseText)
	if text == "" {
		if r.IsRequired {
			return errAnswerRequired
		}
		return nil
	}

	rules := r.ValidationRules
	if rules == nil {
		return nil
	}

	var checks []validation.Rule
	if rules.MinLength > 0 || rules.MaxLength > 0 {
		checks = append(checks, validation.RuneLength(rules.MinLength, rules.MaxLength))
	}
	if len(rules.Options) > 0 {
		checks = append(checks, validation.By(allowedOptions(r.QuestionType, rules.Options)))
	}
	if rules.Pattern != "" {
		checks = append(checks, validation.By(matchesPattern(rules.Pattern)))
	}

	return validation.Validate(text, checks...)
}

// allowedOptions accepts one option, or a comma-separated list of options
// for checkbox questions.
func allowedOptions(kind domain.QuestionType, options []string) validation.RuleFunc {
	return func(value interface{}) error {
		answer, _ := value.(string)
		picked := []string{answer}
		if kind == domain.QuestionTypeCheckbox {
			picked = strings.Split(answer, ",")
		}
		for _, p := range picked {
			if !slices.Contains(options, strings.TrimSpace(p)) {
				return errAnswerNotAllowed
			}
		}
		return nil
	}
}

// matchesPattern applies an ECMAScript pattern to the whole answer, the way
// an HTML pattern attribute does. A pattern that does not compile is
// ignored.
func matchesPattern(pattern string) validation.RuleFunc {
	return func(value interface{}) error {
		re, err := regexp2.Compile("^(?:"+pattern+")$", regexp2.ECMAScript)
		if err != nil {
			return nil
		}
		re.MatchTimeout = patternTimeout

		answer, _ := value.(string)
		ok, err := re.MatchString(answer)
		if err != nil || !ok {
			return errAnswerFormat
		}
		return nil
	}
}
