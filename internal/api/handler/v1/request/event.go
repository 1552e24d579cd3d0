package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/eventreg/regclient/internal/domain"
)

var (
	errEventEndsBeforeStart = errors.New("the event must end after it starts")
	errNegativePrice        = errors.New("the price cannot be negative")
	errSalesEndsBeforeStart = errors.New("ticket sales must end after they start")
	errOptionsRequired      = errors.New("dropdown and checkbox questions need at least one option")
)

type EventRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	EventType     domain.EventType `json:"eventType"`
	Location      string           `json:"location"`
	Capacity      int              `json:"capacity"`
	IsFree        bool             `json:"isFree"`
	StartDateTime time.Time        `json:"startDateTime"`
	EndDateTime   time.Time        `json:"endDateTime"`
	ImageURL      string           `json:"imageUrl"`
	Status        string           `json:"status"`
}

func (req *EventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(3, 200)),
		validation.Field(&req.Description, validation.Length(0, 5000)),
		validation.Field(&req.EventType, validation.Required, validation.In(
			domain.EventTypeSports,
			domain.EventTypeMusical,
			domain.EventTypeSocial,
			domain.EventTypeVolunteering,
			domain.EventTypeConference,
		)),
		validation.Field(&req.Capacity, validation.Min(0)),
		validation.Field(&req.StartDateTime, validation.Required),
		validation.Field(&req.EndDateTime, validation.Required),
		validation.Field(&req.Status, validation.In(domain.EventStatusDraft, domain.EventStatusPublished)),
	)
	if err != nil {
		return err
	}

	if !req.EndDateTime.After(req.StartDateTime) {
		return errEventEndsBeforeStart
	}

	return nil
}

func (req *EventRequest) ToDomain() domain.Event {
	return domain.Event{
		Name:          req.Name,
		Description:   req.Description,
		EventType:     req.EventType,
		Location:      req.Location,
		Capacity:      req.Capacity,
		IsFree:        req.IsFree,
		StartDateTime: req.StartDateTime,
		EndDateTime:   req.EndDateTime,
		ImageURL:      req.ImageURL,
		Status:        req.Status,
	}
}

type TicketRequest struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	QuantityTotal int                 `json:"quantityTotal"`
	SalesStart    time.Time           `json:"salesStart"`
	SalesEnd      time.Time           `json:"salesEnd"`
	Status        domain.TicketStatus `json:"status"`
}

func (req *TicketRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.QuantityTotal, validation.Required, validation.Min(1)),
		validation.Field(&req.Status, validation.In(
			domain.TicketStatusActive,
			domain.TicketStatusInactive,
			domain.TicketStatusSoldOut,
		)),
	)
	if err != nil {
		return err
	}

	if req.Price.IsNegative() {
		return errNegativePrice
	}
	if !req.SalesStart.IsZero() && !req.SalesEnd.IsZero() && !req.SalesEnd.After(req.SalesStart) {
		return errSalesEndsBeforeStart
	}

	return nil
}

func (req *TicketRequest) ToDomain(eventID int64) domain.TicketType {
	return domain.TicketType{
		EventID:       eventID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		QuantityTotal: req.QuantityTotal,
		SalesStart:    req.SalesStart,
		SalesEnd:      req.SalesEnd,
		Status:        req.Status,
	}
}

type QuestionRequest struct {
	QuestionText    string                  `json:"questionText"`
	QuestionType    domain.QuestionType     `json:"questionType"`
	Category        string                  `json:"category"`
	IsRequired      bool                    `json:"isRequired"`
	DisplayOrder    int                     `json:"displayOrder"`
	ValidationRules *domain.ValidationRules `json:"validationRules"`
}

func (req *QuestionRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.QuestionText, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.QuestionType, validation.Required, validation.In(
			domain.QuestionTypeText,
			domain.QuestionTypeSelect,
			domain.QuestionTypeCheckbox,
		)),
		validation.Field(&req.DisplayOrder, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if req.QuestionType != domain.QuestionTypeText && (req.ValidationRules == nil || len(req.ValidationRules.Options) == 0) {
		return errOptionsRequired
	}

	return nil
}

func (req *QuestionRequest) ToDomain(eventID int64) domain.EventQuestion {
	return domain.EventQuestion{
		EventID:      eventID,
		IsRequired:   req.IsRequired,
		DisplayOrder: req.DisplayOrder,
		Question: domain.Question{
			QuestionText:    req.QuestionText,
			QuestionType:    req.QuestionType,
			Category:        req.Category,
			ValidationRules: req.ValidationRules,
		},
	}
}
