package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository"
)

var (
	ErrEventNotFound    = repository.ErrEventNotFound
	ErrTicketNotFound   = repository.ErrTicketNotFound
	ErrQuestionNotFound = repository.ErrQuestionNotFound
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id int64) (domain.Event, error)
	List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, int, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	Delete(ctx context.Context, id int64) error
	CreateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error)
	FindTicket(ctx context.Context, eventID, ticketID int64) (domain.TicketType, error)
	ListTickets(ctx context.Context, eventID int64) ([]domain.TicketType, error)
	UpdateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error)
	DeleteTicket(ctx context.Context, eventID, ticketID int64) error
	CreateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error)
	ListQuestions(ctx context.Context, eventID int64) ([]domain.EventQuestion, error)
	UpdateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error)
	DeleteQuestion(ctx context.Context, eventID, eventQuestionID int64) error
}

type RegistrationLister interface {
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Registration, error)
}

type EventService struct {
	repo          EventRepository
	registrations RegistrationLister
}

func NewEventService(repo EventRepository, registrations RegistrationLister) *EventService {
	return &EventService{
		repo:          repo,
		registrations: registrations,
	}
}

func (s *EventService) ListEvents(ctx context.Context, page, limit int, search string, publishedOnly bool) (domain.Page[domain.Event], error) {
	page, limit = normalizePage(page, limit)

	events, total, err := s.repo.List(ctx, repository.EventFilter{
		Offset:        (page - 1) * limit,
		Limit:         limit,
		Search:        search,
		PublishedOnly: publishedOnly,
	})
	if err != nil {
		return domain.Page[domain.Event]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return domain.Page[domain.Event]{
		Items:      events,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

// GetEvent returns the event with its tickets and questions. Drafts are
// hidden unless includeDrafts is set.
func (s *EventService) GetEvent(ctx context.Context, id int64, includeDrafts bool) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if !includeDrafts && event.Status != domain.EventStatusPublished {
		return domain.Event{}, ErrEventNotFound
	}

	return event, nil
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.Status == "" {
		event.Status = domain.EventStatusPublished
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	current, err := s.repo.FindByID(ctx, event.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if event.Status == "" {
		event.Status = current.Status
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *EventService) Report(ctx context.Context, id int64) (domain.EventReport, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return domain.EventReport{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	regs, err := s.registrations.ListByEvent(ctx, id)
	if err != nil {
		return domain.EventReport{}, fmt.Errorf("s.registrations.ListByEvent -> %w", err)
	}

	report := domain.EventReport{EventID: id, TotalRevenue: decimal.Zero}
	for _, reg := range regs {
		report.TotalRegistrations++
		report.TotalParticipants += len(reg.Participants)
		report.TotalRevenue = report.TotalRevenue.Add(reg.TotalAmount)
	}

	return report, nil
}

func (s *EventService) ListTickets(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	tickets, err := s.repo.ListTickets(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListTickets -> %w", err)
	}

	return tickets, nil
}

func (s *EventService) GetTicket(ctx context.Context, eventID, ticketID int64) (domain.TicketType, error) {
	ticket, err := s.repo.FindTicket(ctx, eventID, ticketID)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("s.repo.FindTicket -> %w", err)
	}

	return ticket, nil
}

func (s *EventService) CreateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error) {
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusActive
	}

	created, err := s.repo.CreateTicket(ctx, ticket)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("s.repo.CreateTicket -> %w", err)
	}

	return created, nil
}

func (s *EventService) UpdateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error) {
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusActive
	}

	updated, err := s.repo.UpdateTicket(ctx, ticket)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("s.repo.UpdateTicket -> %w", err)
	}

	return updated, nil
}

func (s *EventService) DeleteTicket(ctx context.Context, eventID, ticketID int64) error {
	if err := s.repo.DeleteTicket(ctx, eventID, ticketID); err != nil {
		return fmt.Errorf("s.repo.DeleteTicket -> %w", err)
	}

	return nil
}

// Availability reports whether quantity tickets of ticketID can be bought
// at now.
func (s *EventService) Availability(ctx context.Context, eventID, ticketID int64, quantity int, now time.Time) (domain.TicketAvailability, error) {
	ticket, err := s.repo.FindTicket(ctx, eventID, ticketID)
	if err != nil {
		return domain.TicketAvailability{}, fmt.Errorf("s.repo.FindTicket -> %w", err)
	}

	remaining := ticket.Remaining()
	if ticket.QuantityTotal <= 0 {
		remaining = quantity
	}
	out := domain.TicketAvailability{AvailableQuantity: max(0, remaining)}

	switch {
	case ticket.Status != domain.TicketStatusActive:
		out.Reason = fmt.Sprintf("ticket is %s", ticket.Status)
	case !ticket.SalesStart.IsZero() && now.Before(ticket.SalesStart):
		out.Reason = "sales have not started"
	case !ticket.SalesEnd.IsZero() && now.After(ticket.SalesEnd):
		out.Reason = "sales have ended"
	case remaining < quantity:
		out.Reason = "not enough tickets left"
	default:
		out.Available = true
	}

	return out, nil
}

func (s *EventService) ListQuestions(ctx context.Context, eventID int64) ([]domain.EventQuestion, error) {
	questions, err := s.repo.ListQuestions(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListQuestions -> %w", err)
	}

	return questions, nil
}

func (s *EventService) CreateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error) {
	created, err := s.repo.CreateQuestion(ctx, question)
	if err != nil {
		return domain.EventQuestion{}, fmt.Errorf("s.repo.CreateQuestion -> %w", err)
	}

	return created, nil
}

func (s *EventService) UpdateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error) {
	updated, err := s.repo.UpdateQuestion(ctx, question)
	if err != nil {
		return domain.EventQuestion{}, fmt.Errorf("s.repo.UpdateQuestion -> %w", err)
	}

	return updated, nil
}

func (s *EventService) DeleteQuestion(ctx context.Context, eventID, eventQuestionID int64) error {
	if err := s.repo.DeleteQuestion(ctx, eventID, eventQuestionID); err != nil {
		return fmt.Errorf("s.repo.DeleteQuestion -> %w", err)
	}

	return nil
}
