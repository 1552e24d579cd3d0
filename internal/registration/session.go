// Package registration keeps the state of an in-progress event registration
// as the user moves through the wizard. It performs no I/O.
package registration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventreg/regclient/internal/domain"
)

// TicketSelection is one ticket type of the loaded event and the quantity
// the user picked.
type TicketSelection struct {
	TicketID      int64
	Name          string
	Price         decimal.Decimal
	Quantity      int
	SalesStart    time.Time
	SalesEnd      time.Time
	Status        domain.TicketStatus
	QuantityTotal int
	QuantitySold  int
}

// OnSale reports whether now falls inside the ticket's sales window.
// A zero bound is open.
func (t TicketSelection) OnSale(now time.Time) bool {
	if !t.SalesStart.IsZero() && now.Before(t.SalesStart) {
		return false
	}
	if !t.SalesEnd.IsZero() && now.After(t.SalesEnd) {
		return false
	}
	return true
}

type SubmissionResult struct {
	RegistrationID string
	PaymentToken   string
}

// Session is not safe for concurrent use.
type Session struct {
	eventID      int64
	event        *domain.Event
	tickets      []TicketSelection
	participants []Participant
	result       *SubmissionResult
	step         Step
}

func NewSession() *Session {
	return &Session{}
}

// LoadEvent starts a registration for event. Ticket quantities start at 0.
func (s *Session) LoadEvent(event domain.Event) {
	snapshot := event
	snapshot.Tickets = append([]domain.TicketType(nil), event.Tickets...)
	snapshot.EventQuestions = append([]domain.EventQuestion(nil), event.EventQuestions...)

	s.event = &snapshot
	s.eventID = event.ID

	s.tickets = make([]TicketSelection, 0, len(snapshot.Tickets))
	for _, t := range snapshot.Tickets {
		s.tickets = append(s.tickets, TicketSelection{
			TicketID:      t.ID,
			Name:          t.Name,
			Price:         t.Price,
			Quantity:      0,
			SalesStart:    t.SalesStart,
			SalesEnd:      t.SalesEnd,
			Status:        t.Status,
			QuantityTotal: t.QuantityTotal,
			QuantitySold:  t.QuantitySold,
		})
	}

	s.RecomputeParticipants()
}

// SetTicketQuantity sets the quantity of ticketID, clamped between 0 and
// the number still for sale when the ticket has a limited stock. Unknown
// tickets are ignored.
func (s *Session) SetTicketQuantity(ticketID int64, quantity int) {
	for i := range s.tickets {
		t := &s.tickets[i]
		if t.TicketID != ticketID {
			continue
		}
		if t.QuantityTotal > 0 {
			quantity = min(quantity, t.QuantityTotal-t.QuantitySold)
		}
		t.Quantity = max(0, quantity)
		break
	}

	s.RecomputeParticipants()
}

// RecomputeParticipants resizes the participant list to the number of
// selected tickets and aligns every participant's responses with the event
// questions. Truncation drops the trailing participants and their data.
func (s *Session) RecomputeParticipants() {
	target := s.targetParticipantCount()

	switch {
	case target > len(s.participants):
		for len(s.participants) < target {
			s.participants = append(s.participants, Participant{})
		}
	case target < len(s.participants):
		clear(s.participants[target:])
		s.participants = s.participants[:target]
	}

	var questions []domain.EventQuestion
	if s.event != nil {
		questions = s.event.EventQuestions
	}
	for i := range s.participants {
		s.participants[i].syncResponses(questions)
	}
}

func (s *Session) targetParticipantCount() int {
	target := s.TotalSelectedTickets()
	if s.event != nil && s.event.IsFree && target == 0 {
		return 1
	}
	return target
}

// SetParticipantField merges fields into the participant at index.
func (s *Session) SetParticipantField(index int, fields ParticipantFields) {
	if index < 0 || index >= len(s.participants) {
		return
	}
	s.participants[index].merge(fields)
}

func (s *Session) SetParticipantResponse(index int, eventQuestionID int64, text string) {
	if index < 0 || index >= len(s.participants) {
		return
	}
	responses := s.participants[index].Responses
	for i := range responses {
		if responses[i].EventQuestionID == eventQuestionID {
			responses[i].ResponseText = text
			return
		}
	}
}

// RecordSubmissionResult keeps the server's answer for the payment or
// confirmation step. The rest of the session is left as is.
func (s *Session) RecordSubmissionResult(registrationID, paymentToken string) {
	s.result = &SubmissionResult{
		RegistrationID: registrationID,
		PaymentToken:   paymentToken,
	}
}

func (s *Session) Reset() {
	*s = Session{}
}

func (s *Session) SetStep(step Step) {
	if step.valid() {
		s.step = step
	}
}

func (s *Session) NextStep() {
	s.SetStep(s.step + 1)
}

func (s *Session) PrevStep() {
	s.SetStep(s.step - 1)
}

func (s *Session) Step() Step {
	return s.step
}

func (s *Session) EventID() int64 {
	return s.eventID
}

func (s *Session) IsEventLoaded() bool {
	return s.event != nil
}

// Event returns the loaded event snapshot.
func (s *Session) Event() (domain.Event, bool) {
	if s.event == nil {
		return domain.Event{}, false
	}
	return *s.event, true
}

func (s *Session) Tickets() []TicketSelection {
	return append([]TicketSelection(nil), s.tickets...)
}

func (s *Session) Participants() []Participant {
	out := make([]Participant, len(s.participants))
	for i, p := range s.participants {
		out[i] = p.clone()
	}
	return out
}

func (s *Session) ParticipantCount() int {
	return len(s.participants)
}

func (s *Session) TotalSelectedTickets() int {
	total := 0
	for _, t := range s.tickets {
		total += t.Quantity
	}
	return total
}

// TotalAmount is the order price. Free events cost nothing whatever the
// ticket prices say.
func (s *Session) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	if s.event == nil || s.event.IsFree {
		return total
	}
	for _, t := range s.tickets {
		total = total.Add(t.Price.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	return total
}

func (s *Session) Result() (SubmissionResult, bool) {
	if s.result == nil {
		return SubmissionResult{}, false
	}
	return *s.result, true
}
