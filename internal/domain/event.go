package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeSports       EventType = "SPORTS"
	EventTypeMusical      EventType = "MUSICAL"
	EventTypeSocial       EventType = "SOCIAL"
	EventTypeVolunteering EventType = "VOLUNTEERING"
	EventTypeConference   EventType = "CONFERENCE"
)

type Event struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	EventType      EventType       `json:"eventType,omitempty"`
	Location       string          `json:"location,omitempty"`
	Capacity       int             `json:"capacity,omitempty"`
	IsFree         bool            `json:"isFree"`
	StartDateTime  time.Time       `json:"startDateTime"`
	EndDateTime    time.Time       `json:"endDateTime"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Status         string          `json:"status,omitempty"`
	Tickets        []TicketType    `json:"tickets"`
	EventQuestions []EventQuestion `json:"eventQuestions"`
}

const (
	EventStatusDraft     = "DRAFT"
	EventStatusPublished = "PUBLISHED"
)

type TicketStatus string

const (
	TicketStatusActive   TicketStatus = "ACTIVE"
	TicketStatusInactive TicketStatus = "INACTIVE"
	TicketStatusSoldOut  TicketStatus = "SOLD_OUT"
)

type TicketType struct {
	ID            int64           `json:"id"`
	EventID       int64           `json:"eventId"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	QuantityTotal int             `json:"quantityTotal"`
	QuantitySold  int             `json:"quantitySold"`
	SalesStart    time.Time       `json:"salesStart"`
	SalesEnd      time.Time       `json:"salesEnd"`
	Status        TicketStatus    `json:"status"`
}

// Remaining returns the number of tickets still for sale.
func (t TicketType) Remaining() int {
	return t.QuantityTotal - t.QuantitySold
}

type QuestionType string

const (
	QuestionTypeText     QuestionType = "TEXT"
	QuestionTypeSelect   QuestionType = "DROPDOWN"
	QuestionTypeCheckbox QuestionType = "CHECKBOX"
)

// ValidationRules constrain the answer to a question.
type ValidationRules struct {
	Options   []string `json:"options,omitempty"`
	MinLength int      `json:"minLength,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

type Question struct {
	ID              int64            `json:"id"`
	QuestionText    string           `json:"questionText"`
	QuestionType    QuestionType     `json:"questionType"`
	Category        string           `json:"category,omitempty"`
	ValidationRules *ValidationRules `json:"validationRules,omitempty"`
}

// EventQuestion binds a Question to an Event. Its ID, not the question's,
// identifies a participant response.
type EventQuestion struct {
	ID           int64    `json:"id"`
	EventID      int64    `json:"eventId"`
	IsRequired   bool     `json:"isRequired"`
	DisplayOrder int      `json:"displayOrder"`
	Question     Question `json:"question"`
}

type TicketAvailability struct {
	Available         bool   `json:"available"`
	AvailableQuantity int    `json:"availableQuantity"`
	Reason            string `json:"reason,omitempty"`
}

type EventReport struct {
	EventID            int64           `json:"eventId"`
	TotalRegistrations int             `json:"totalRegistrations"`
	TotalParticipants  int             `json:"totalParticipants"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
}
