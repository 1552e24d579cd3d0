package repository

import (
	"context"
	"fmt"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository/dao"
)

type RegistrationDAO interface {
	Insert(ctx context.Context, reg dao.Registration) (dao.Registration, error)
	ListByEvent(ctx context.Context, eventID int64) ([]dao.Registration, error)
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

// Create stores reg, checking the event's capacity and taking its tickets
// out of stock in the same transaction. Nothing is changed when the event is
// full or any ticket has too few left.
func (r *RegistrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Insert(ctx, registrationToDAO(reg))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return registrationToDomain(created), nil
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Registration, error) {
	found, err := r.dao.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByEvent -> %w", err)
	}

	regs := make([]domain.Registration, 0, len(found))
	for _, reg := range found {
		regs = append(regs, registrationToDomain(reg))
	}

	return regs, nil
}

func registrationToDAO(reg domain.Registration) dao.Registration {
	out := dao.Registration{
		ID:           reg.ID,
		EventID:      reg.EventID,
		UserID:       reg.UserID,
		Status:       string(reg.Status),
		PaymentToken: reg.PaymentToken,
		TotalAmount:  reg.TotalAmount,
		CreatedAt:    reg.CreatedAt,
	}
	for _, tq := range reg.Tickets {
		out.Tickets = append(out.Tickets, dao.RegistrationTicket{TicketID: tq.TicketID, Quantity: tq.Quantity})
	}
	for _, p := range reg.Participants {
		participant := dao.Participant{
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
			TicketID:    p.TicketID,
		}
		for _, resp := range p.Responses {
			participant.Responses = append(participant.Responses, dao.Response{
				EventQuestionID: resp.EventQuestionID,
				ResponseText:    resp.ResponseText,
			})
		}
		out.Participants = append(out.Participants, participant)
	}

	return out
}

func registrationToDomain(reg dao.Registration) domain.Registration {
	out := domain.Registration{
		ID:           reg.ID,
		EventID:      reg.EventID,
		UserID:       reg.UserID,
		Status:       domain.RegistrationStatus(reg.Status),
		PaymentToken: reg.PaymentToken,
		TotalAmount:  reg.TotalAmount,
		Tickets:      make([]domain.TicketQuantity, 0, len(reg.Tickets)),
		Participants: make([]domain.ParticipantRequest, 0, len(reg.Participants)),
		CreatedAt:    reg.CreatedAt,
	}
	for _, tq := range reg.Tickets {
		out.Tickets = append(out.Tickets, domain.TicketQuantity{TicketID: tq.TicketID, Quantity: tq.Quantity})
	}
	for _, p := range reg.Participants {
		participant := domain.ParticipantRequest{
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
			TicketID:    p.TicketID,
			Responses:   make([]domain.ResponseRequest, 0, len(p.Responses)),
		}
		for _, resp := range p.Responses {
			participant.Responses = append(participant.Responses, domain.ResponseRequest{
				EventQuestionID: resp.EventQuestionID,
				ResponseText:    resp.ResponseText,
			})
		}
		out.Participants = append(out.Participants, participant)
	}

	return out
}
