package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository"
)

var (
	ErrInsufficientStock   = repository.ErrInsufficientStock
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrRegistrationClosed  = errors.New("registration is closed for this event")
	ErrEventFull           = repository.ErrEventFull
	ErrTicketNotOnSale     = errors.New("ticket is not on sale")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
}

type EventFinder interface {
	FindByID(ctx context.Context, id int64) (domain.Event, error)
}

type RegistrationService struct {
	repo   RegistrationRepository
	events EventFinder
}

func NewRegistrationService(repo RegistrationRepository, events EventFinder) *RegistrationService {
	return &RegistrationService{
		repo:   repo,
		events: events,
	}
}

// Register checks req against the event and stores it. userID is nil for
// anonymous registrations.
func (s *RegistrationService) Register(ctx context.Context, req domain.RegistrationRequest, userID *int64, now time.Time) (domain.RegistrationResult, error) {
	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if event.Status != domain.EventStatusPublished {
		return domain.RegistrationResult{}, ErrEventNotFound
	}
	if !event.EndDateTime.IsZero() && now.After(event.EndDateTime) {
		return domain.RegistrationResult{}, ErrRegistrationClosed
	}
	if len(req.Participants) == 0 {
		return domain.RegistrationResult{}, invalid("at least one participant is required")
	}

	tickets := make(map[int64]domain.TicketType, len(event.Tickets))
	for _, t := range event.Tickets {
		tickets[t.ID] = t
	}

	quantities, err := ticketQuantities(event, req)
	if err != nil {
		return domain.RegistrationResult{}, err
	}

	total := decimal.Zero
	for _, tq := range quantities {
		t, ok := tickets[tq.TicketID]
		if !ok {
			return domain.RegistrationResult{}, ErrTicketNotFound
		}
		if t.Status != domain.TicketStatusActive ||
			(!t.SalesStart.IsZero() && now.Before(t.SalesStart)) ||
			(!t.SalesEnd.IsZero() && now.After(t.SalesEnd)) {
			return domain.RegistrationResult{}, fmt.Errorf("%w: %s", ErrTicketNotOnSale, t.Name)
		}
		if !event.IsFree {
			total = total.Add(t.Price.Mul(decimal.NewFromInt(int64(tq.Quantity))))
		}
	}

	if err = checkResponses(event, req.Participants); err != nil {
		return domain.RegistrationResult{}, err
	}

	reg := domain.Registration{
		ID:           uuid.NewString(),
		EventID:      event.ID,
		UserID:       userID,
		Status:       domain.RegistrationStatusConfirmed,
		TotalAmount:  total,
		Tickets:      quantities,
		Participants: req.Participants,
		CreatedAt:    now,
	}
	if !event.IsFree && total.IsPositive() {
		reg.Status = domain.RegistrationStatusPendingPayment
		reg.PaymentToken = uuid.NewString()
	}

	created, err := s.repo.Create(ctx, reg)
	if err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return domain.RegistrationResult{
		RegistrationID: created.ID,
		PaymentToken:   created.PaymentToken,
		Status:         string(created.Status),
		CreatedAt:      created.CreatedAt,
	}, nil
}

// ticketQuantities returns what the registration takes out of stock, one
// line per ticket. Paid events use the selected tickets, which must cover
// every participant; lines naming the same ticket are added up. Free events
// count the ticket each participant holds.
func ticketQuantities(event domain.Event, req domain.RegistrationRequest) ([]domain.TicketQuantity, error) {
	if !event.IsFree {
		if len(req.Tickets) == 0 {
			return nil, invalid("at least one ticket is required")
		}
		merged := make([]domain.TicketQuantity, 0, len(req.Tickets))
		index := make(map[int64]int, len(req.Tickets))
		sum := 0
		for _, tq := range req.Tickets {
			if tq.Quantity <= 0 {
				return nil, invalid("ticket quantities must be positive")
			}
			sum += tq.Quantity
			if i, ok := index[tq.TicketID]; ok {
				merged[i].Quantity += tq.Quantity
				continue
			}
			index[tq.TicketID] = len(merged)
			merged = append(merged, tq)
		}
		if sum != len(req.Participants) {
			return nil, invalid(fmt.Sprintf("%d tickets selected for %d participants", sum, len(req.Participants)))
		}
		return merged, nil
	}

	if len(event.Tickets) == 0 {
		return []domain.TicketQuantity{}, nil
	}

	counts := map[int64]int{}
	var order []int64
	for _, p := range req.Participants {
		id := event.Tickets[0].ID
		if p.TicketID != nil {
			id = *p.TicketID
		}
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	quantities := make([]domain.TicketQuantity, 0, len(order))
	for _, id := range order {
		quantities = append(quantities, domain.TicketQuantity{TicketID: id, Quantity: counts[id]})
	}

	return quantities, nil
}

func checkResponses(event domain.Event, participants []domain.ParticipantRequest) error {
	questions := make(map[int64]domain.EventQuestion, len(event.EventQuestions))
	for _, q := range event.EventQuestions {
		questions[q.ID] = q
	}

	for i, p := range participants {
		if strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
			return invalid(fmt.Sprintf("participant %d: email, first name and last name are required", i+1))
		}

		answered := map[int64]bool{}
		for _, r := range p.Responses {
			if _, ok := questions[r.EventQuestionID]; !ok {
				return invalid(fmt.Sprintf("participant %d: unknown question %d", i+1, r.EventQuestionID))
			}
			if strings.TrimSpace(r.ResponseText) != "" {
				answered[r.EventQuestionID] = true
			}
		}
		for _, q := range event.EventQuestions {
			if q.IsRequired && !answered[q.ID] {
				return invalid(fmt.Sprintf("participant %d: %q is required", i+1, q.Question.QuestionText))
			}
		}
	}

	return nil
}

func invalid(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, detail)
}
