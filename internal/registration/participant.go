package registration

import "github.com/eventreg/regclient/internal/domain"

type Participant struct {
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	PhoneNumber string     `json:"phoneNumber"`
	DateOfBirth string     `json:"dateOfBirth"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	ZipCode     string     `json:"zipCode"`
	Country     string     `json:"country"`
	Responses   []Response `json:"responses"`
}

// Response is one participant's answer to one event question. The question
// metadata is copied from the event so the questionnaire can render without
// looking the question up again.
type Response struct {
	EventQuestionID int64
	QuestionID      int64
	QuestionText    string
	QuestionType    domain.QuestionType
	IsRequired      bool
	ValidationRules *domain.ValidationRules
	ResponseText    string
}

// ParticipantFields is a partial update; nil fields are left unchanged.
type ParticipantFields struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	DateOfBirth *string
	Address     *string
	City        *string
	State       *string
	ZipCode     *string
	Country     *string
}

// Text returns a pointer to v, for building ParticipantFields literals.
func Text(v string) *string {
	return &v
}

func (p *Participant) merge(f ParticipantFields) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Email, f.Email)
	set(&p.FirstName, f.FirstName)
	set(&p.LastName, f.LastName)
	set(&p.PhoneNumber, f.PhoneNumber)
	set(&p.DateOfBirth, f.DateOfBirth)
	set(&p.Address, f.Address)
	set(&p.City, f.City)
	set(&p.State, f.State)
	set(&p.ZipCode, f.ZipCode)
	set(&p.Country, f.Country)
}

func (p Participant) clone() Participant {
	if p.Responses != nil {
		p.Responses = append([]Response(nil), p.Responses...)
	}
	return p
}

// syncResponses rebuilds the responses to follow questions in order,
// keeping any text already entered for the same event question.
func (p *Participant) syncResponses(questions []domain.EventQuestion) {
	existing := make(map[int64]string, len(p.Responses))
	for _, r := range p.Responses {
		existing[r.EventQuestionID] = r.ResponseText
	}

	responses := make([]Response, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, Response{
			EventQuestionID: q.ID,
			QuestionID:      q.Question.ID,
			QuestionText:    q.Question.QuestionText,
			QuestionType:    q.Question.QuestionType,
			IsRequired:      q.IsRequired,
			ValidationRules: q.Question.ValidationRules,
			ResponseText:    existing[q.ID],
		})
	}
	p.Responses = responses
}
