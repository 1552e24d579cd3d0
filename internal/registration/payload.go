package registration

import "github.com/eventreg/regclient/internal/domain"

// BuildSubmissionPayload derives the POST /registrations body from the
// session.
func (s *Session) BuildSubmissionPayload() (domain.RegistrationRequest, error) {
	if s.event == nil {
		return domain.RegistrationRequest{}, &ValidationError{Op: "BuildSubmissionPayload", Err: ErrMissingEvent}
	}

	tickets := []domain.TicketQuantity{}
	if !s.event.IsFree {
		for _, t := range s.tickets {
			if t.Quantity > 0 {
				tickets = append(tickets, domain.TicketQuantity{TicketID: t.TicketID, Quantity: t.Quantity})
			}
		}
	}

	assigned := s.assignTickets()
	participants := make([]domain.ParticipantRequest, 0, len(s.participants))
	for i, p := range s.participants {
		participants = append(participants, participantRequest(p, assigned[i]))
	}

	return domain.RegistrationRequest{
		EventID:      s.eventID,
		Tickets:      tickets,
		Participants: participants,
	}, nil
}

// assignTickets returns one ticket id per participant, nil when none is
// left. Paid tickets are handed out positionally in selection order.
func (s *Session) assignTickets() []*int64 {
	assigned := make([]*int64, len(s.participants))

	if s.event.IsFree {
		if len(s.tickets) == 0 {
			return assigned
		}
		for i := range assigned {
			id := s.tickets[0].TicketID
			assigned[i] = &id
		}
		return assigned
	}

	next := 0
	for _, t := range s.tickets {
		for n := 0; n < t.Quantity && next < len(assigned); n++ {
			id := t.TicketID
			assigned[next] = &id
			next++
		}
	}

	return assigned
}

func participantRequest(p Participant, ticketID *int64) domain.ParticipantRequest {
	responses := []domain.ResponseRequest{}
	for _, r := range p.Responses {
		if r.ResponseText == "" && !r.IsRequired {
			continue
		}
		responses = append(responses, domain.ResponseRequest{
			EventQuestionID: r.EventQuestionID,
			ResponseText:    r.ResponseText,
		})
	}

	// Empty optional fields are dropped by the omitempty tags.
	return domain.ParticipantRequest{
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		DateOfBirth: p.DateOfBirth,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		ZipCode:     p.ZipCode,
		Country:     p.Country,
		TicketID:    ticketID,
		Responses:   responses,
	}
}
