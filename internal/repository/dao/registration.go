package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient tickets left")
	ErrEventFull         = errors.New("the event is full")
)

const ticketStatusSoldOut = "SOLD_OUT"

type Registration struct {
	ID           string `gorm:"primaryKey"`
	EventID      int64  `gorm:"index;not null"`
	UserID       *int64 `gorm:"index"`
	Status       string `gorm:"not null"`
	PaymentToken string
	TotalAmount  decimal.Decimal      `gorm:"type:text;not null"`
	Tickets      []RegistrationTicket `gorm:"foreignKey:RegistrationID"`
	Participants []Participant        `gorm:"foreignKey:RegistrationID"`
	CreatedAt    time.Time
}

type RegistrationTicket struct {
	ID             int64  `gorm:"primaryKey"`
	RegistrationID string `gorm:"index;not null"`
	TicketID       int64  `gorm:"not null"`
	Quantity       int    `gorm:"not null"`
}

type Participant struct {
	ID             int64  `gorm:"primaryKey"`
	RegistrationID string `gorm:"index;not null"`
	Email          string `gorm:"not null"`
	FirstName      string `gorm:"not null"`
	LastName       string `gorm:"not null"`
	PhoneNumber    string
	DateOfBirth    string
	Address        string
	City           string
	State          string
	ZipCode        string
	Country        string
	TicketID       *int64
	Responses      []Response `gorm:"serializer:json"`
}

type Response struct {
	EventQuestionID int64  `json:"eventQuestionId"`
	ResponseText    string `json:"responseText"`
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// Insert stores reg after checking the event's capacity and taking its
// tickets out of stock, all in one transaction. Lines naming the same ticket
// are summed before the stock check. Nothing is written when a check fails.
func (d *RegistrationDAO) Insert(ctx context.Context, reg Registration) (Registration, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Select("id", "capacity").First(&event, reg.EventID).Error; err != nil {
			return notFound(err, ErrEventNotFound)
		}

		if event.Capacity > 0 {
			var taken int64
			err := tx.Model(&Participant{}).
				Joins("JOIN registrations ON registrations.id = participants.registration_id").
				Where("registrations.event_id = ?", reg.EventID).
				Count(&taken).Error
			if err != nil {
				return err
			}
			if int(taken)+len(reg.Participants) > event.Capacity {
				return ErrEventFull
			}
		}

		reg.Tickets = sumByTicket(reg.Tickets)
		for _, line := range reg.Tickets {
			if err := takeStock(tx, reg.EventID, line.TicketID, line.Quantity); err != nil {
				return err
			}
		}

		return tx.Create(&reg).Error
	})
	if err != nil {
		return Registration{}, err
	}

	return reg, nil
}

func (d *RegistrationDAO) ListByEvent(ctx context.Context, eventID int64) ([]Registration, error) {
	var regs []Registration

	result := d.db.WithContext(ctx).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Where("event_id = ?", eventID).
		Order("id").
		Find(&regs)
	if result.Error != nil {
		return nil, result.Error
	}

	return regs, nil
}

// sumByTicket merges lines naming the same ticket, keeping first-seen order.
func sumByTicket(lines []RegistrationTicket) []RegistrationTicket {
	merged := make([]RegistrationTicket, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.TicketID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.TicketID] = len(merged)
		merged = append(merged, RegistrationTicket{TicketID: line.TicketID, Quantity: line.Quantity})
	}
	return merged
}

func takeStock(tx *gorm.DB, eventID, ticketID int64, quantity int) error {
	var ticket Ticket
	if err := tx.First(&ticket, "id = ? AND event_id = ?", ticketID, eventID).Error; err != nil {
		return notFound(err, ErrTicketNotFound)
	}

	if ticket.QuantityTotal > 0 && ticket.QuantityTotal-ticket.QuantitySold < quantity {
		return ErrInsufficientStock
	}

	status := ticket.Status
	sold := ticket.QuantitySold + quantity
	if ticket.QuantityTotal > 0 && sold >= ticket.QuantityTotal {
		status = ticketStatusSoldOut
	}

	return tx.Model(&ticket).Updates(map[string]any{
		"quantity_sold": sold,
		"status":        status,
	}).Error
}
