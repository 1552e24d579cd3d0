package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/gateway"
)

var errEventEndsBeforeStart = errors.New("the event must end after it starts")

type EventInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	EventType     domain.EventType `json:"eventType"`
	Location      string           `json:"location,omitempty"`
	Capacity      int              `json:"capacity,omitempty"`
	IsFree        bool             `json:"isFree"`
	StartDateTime time.Time        `json:"startDateTime"`
	EndDateTime   time.Time        `json:"endDateTime"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	// Status is DRAFT or PUBLISHED. Empty keeps the server default.
	Status string `json:"status,omitempty"`
}

func (in *EventInput) Validate() error {
	err := validation.ValidateStruct(
		in,
		validation.Field(&in.Name, validation.Required, validation.Length(3, 200)),
		validation.Field(&in.Description, validation.Length(0, 5000)),
		validation.Field(&in.EventType, validation.Required, validation.In(
			domain.EventTypeSports,
			domain.EventTypeMusical,
			domain.EventTypeSocial,
			domain.EventTypeVolunteering,
			domain.EventTypeConference,
		)),
		validation.Field(&in.Capacity, validation.Min(0)),
		validation.Field(&in.StartDateTime, validation.Required),
		validation.Field(&in.EndDateTime, validation.Required),
		validation.Field(&in.Status, validation.In(domain.EventStatusDraft, domain.EventStatusPublished)),
	)
	if err != nil {
		return err
	}

	if !in.EndDateTime.After(in.StartDateTime) {
		return errEventEndsBeforeStart
	}

	return nil
}

type EventService struct {
	gw Requester
}

func NewEventService(gw Requester) *EventService {
	return &EventService{
		gw: gw,
	}
}

func (s *EventService) List(ctx context.Context, opts ListOptions) (domain.Page[domain.Event], error) {
	var page domain.Page[domain.Event]
	if err := s.gw.DoJSON(ctx, http.MethodGet, "/events", nil, &page, opts.requestOptions()...); err != nil {
		return domain.Page[domain.Event]{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return page, nil
}

// Get returns the public view of an event, tickets and questions included.
func (s *EventService) Get(ctx context.Context, id int64) (domain.Event, error) {
	var event domain.Event
	if err := s.gw.DoJSON(ctx, http.MethodGet, eventPath(id), nil, &event, gateway.Public()); err != nil {
		return domain.Event{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return event, nil
}

func (s *EventService) Create(ctx context.Context, in EventInput) (domain.Event, error) {
	if err := in.Validate(); err != nil {
		return domain.Event{}, err
	}

	var event domain.Event
	if err := s.gw.DoJSON(ctx, http.MethodPost, "/events", in, &event); err != nil {
		return domain.Event{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return event, nil
}

func (s *EventService) Update(ctx context.Context, id int64, in EventInput) (domain.Event, error) {
	if err := in.Validate(); err != nil {
		return domain.Event{}, err
	}

	var event domain.Event
	if err := s.gw.DoJSON(ctx, http.MethodPut, eventPath(id), in, &event); err != nil {
		return domain.Event{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	if _, err := s.gw.Do(ctx, http.MethodDelete, eventPath(id), nil); err != nil {
		return fmt.Errorf("s.gw.Do -> %w", err)
	}

	return nil
}

func (s *EventService) Report(ctx context.Context, id int64) (domain.EventReport, error) {
	var report domain.EventReport
	if err := s.gw.DoJSON(ctx, http.MethodGet, eventPath(id)+"/report", nil, &report); err != nil {
		return domain.EventReport{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return report, nil
}

func eventPath(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}
