package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationRequest is the body of POST /registrations.
type RegistrationRequest struct {
	EventID      int64                `json:"eventId"`
	Tickets      []TicketQuantity     `json:"tickets"`
	Participants []ParticipantRequest `json:"participants"`
}

type TicketQuantity struct {
	TicketID int64 `json:"ticketId"`
	Quantity int   `json:"quantity"`
}

type ParticipantRequest struct {
	Email       string            `json:"email"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	DateOfBirth string            `json:"dateOfBirth,omitempty"`
	Address     string            `json:"address,omitempty"`
	City        string            `json:"city,omitempty"`
	State       string            `json:"state,omitempty"`
	ZipCode     string            `json:"zipCode,omitempty"`
	Country     string            `json:"country,omitempty"`
	TicketID    *int64            `json:"ticketId,omitempty"`
	Responses   []ResponseRequest `json:"responses"`
}

type ResponseRequest struct {
	EventQuestionID int64  `json:"eventQuestionId"`
	ResponseText    string `json:"responseText"`
}

// RegistrationResult is returned by the backend once a registration is
// accepted. PaymentToken is only set for paid events.
type RegistrationResult struct {
	RegistrationID string    `json:"registrationId"`
	PaymentToken   string    `json:"paymentToken,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type RegistrationStatus string

const (
	RegistrationStatusPendingPayment RegistrationStatus = "PENDING_PAYMENT"
	RegistrationStatusConfirmed      RegistrationStatus = "CONFIRMED"
)

// Registration is the stored form of an accepted RegistrationRequest.
type Registration struct {
	ID           string
	EventID      int64
	UserID       *int64
	Status       RegistrationStatus
	PaymentToken string
	TotalAmount  decimal.Decimal
	Tickets      []TicketQuantity
	Participants []ParticipantRequest
	CreatedAt    time.Time
}
