package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/gateway"
)

var (
	errNegativePrice        = errors.New("the price cannot be negative")
	errSalesEndsBeforeStart = errors.New("ticket sales must end after they start")
)

type TicketInput struct {
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	QuantityTotal int                 `json:"quantityTotal"`
	SalesStart    time.Time           `json:"salesStart"`
	SalesEnd      time.Time           `json:"salesEnd"`
	Status        domain.TicketStatus `json:"status,omitempty"`
}

func (in *TicketInput) Validate() error {
	err := validation.ValidateStruct(
		in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.QuantityTotal, validation.Required, validation.Min(1)),
		validation.Field(&in.Status, validation.In(
			domain.TicketStatusActive,
			domain.TicketStatusInactive,
			domain.TicketStatusSoldOut,
		)),
	)
	if err != nil {
		return err
	}

	if in.Price.IsNegative() {
		return errNegativePrice
	}
	if !in.SalesStart.IsZero() && !in.SalesEnd.IsZero() && !in.SalesEnd.After(in.SalesStart) {
		return errSalesEndsBeforeStart
	}

	return nil
}

type TicketService struct {
	gw Requester
}

func NewTicketService(gw Requester) *TicketService {
	return &TicketService{
		gw: gw,
	}
}

func (s *TicketService) List(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	tickets := []domain.TicketType{}
	if err := s.gw.DoJSON(ctx, http.MethodGet, ticketsPath(eventID), nil, &tickets, gateway.Public()); err != nil {
		return nil, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return tickets, nil
}

func (s *TicketService) Get(ctx context.Context, eventID, ticketID int64) (domain.TicketType, error) {
	var ticket domain.TicketType
	if err := s.gw.DoJSON(ctx, http.MethodGet, ticketPath(eventID, ticketID), nil, &ticket, gateway.Public()); err != nil {
		return domain.TicketType{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return ticket, nil
}

func (s *TicketService) Create(ctx context.Context, eventID int64, in TicketInput) (domain.TicketType, error) {
	if err := in.Validate(); err != nil {
		return domain.TicketType{}, err
	}

	var ticket domain.TicketType
	if err := s.gw.DoJSON(ctx, http.MethodPost, ticketsPath(eventID), in, &ticket); err != nil {
		return domain.TicketType{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return ticket, nil
}

func (s *TicketService) Update(ctx context.Context, eventID, ticketID int64, in TicketInput) (domain.TicketType, error) {
	if err := in.Validate(); err != nil {
		return domain.TicketType{}, err
	}

	var ticket domain.TicketType
	if err := s.gw.DoJSON(ctx, http.MethodPut, ticketPath(eventID, ticketID), in, &ticket); err != nil {
		return domain.TicketType{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return ticket, nil
}

func (s *TicketService) Delete(ctx context.Context, eventID, ticketID int64) error {
	if _, err := s.gw.Do(ctx, http.MethodDelete, ticketPath(eventID, ticketID), nil); err != nil {
		return fmt.Errorf("s.gw.Do -> %w", err)
	}

	return nil
}

// Availability asks whether quantity tickets can still be bought.
func (s *TicketService) Availability(ctx context.Context, eventID, ticketID int64, quantity int) (domain.TicketAvailability, error) {
	q := url.Values{}
	q.Set("quantity", strconv.Itoa(max(1, quantity)))

	var availability domain.TicketAvailability
	err := s.gw.DoJSON(ctx, http.MethodGet, ticketPath(eventID, ticketID)+"/availability", nil, &availability,
		gateway.Public(), gateway.WithQuery(q))
	if err != nil {
		return domain.TicketAvailability{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return availability, nil
}

func ticketsPath(eventID int64) string {
	return eventPath(eventID) + "/tickets"
}

func ticketPath(eventID, ticketID int64) string {
	return fmt.Sprintf("%s/%d", ticketsPath(eventID), ticketID)
}
