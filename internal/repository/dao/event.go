package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrQuestionNotFound = errors.New("question not found")
)

type Event struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Description   string
	EventType     string
	Location      string
	Capacity      int       `gorm:"not null"` // 0 means unlimited
	IsFree        bool      `gorm:"not null"`
	StartDateTime time.Time `gorm:"not null"`
	EndDateTime   time.Time `gorm:"not null"`
	ImageURL      string
	Status        string          `gorm:"not null"` // "DRAFT" or "PUBLISHED"
	Tickets       []Ticket        `gorm:"foreignKey:EventID"`
	Questions     []EventQuestion `gorm:"foreignKey:EventID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Ticket struct {
	ID            int64           `gorm:"primaryKey"`
	EventID       int64           `gorm:"index;not null"`
	Name          string          `gorm:"not null"`
	Description   string
	Price         decimal.Decimal `gorm:"type:text;not null"`
	QuantityTotal int             `gorm:"not null"` // 0 means unlimited
	QuantitySold  int             `gorm:"not null"`
	SalesStart    time.Time
	SalesEnd      time.Time
	Status        string `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ValidationRules struct {
	Options   []string `json:"options,omitempty"`
	MinLength int      `json:"minLength,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

type Question struct {
	ID              int64  `gorm:"primaryKey"`
	QuestionText    string `gorm:"not null"`
	QuestionType    string `gorm:"not null"`
	Category        string
	ValidationRules *ValidationRules `gorm:"serializer:json"`
}

type EventQuestion struct {
	ID           int64    `gorm:"primaryKey"`
	EventID      int64    `gorm:"index;not null"`
	QuestionID   int64    `gorm:"not null"`
	Question     Question `gorm:"foreignKey:QuestionID"`
	IsRequired   bool     `gorm:"not null"`
	DisplayOrder int      `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

// withChildren preloads tickets by id and questions by display order.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tickets", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, id")
		}).
		Preload("Questions.Question")
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	event.Tickets = nil
	event.Questions = nil

	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id int64) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).Scopes(withChildren).First(&event, id)
	if result.Error != nil {
		return Event{}, notFound(result.Error, ErrEventNotFound)
	}

	return event, nil
}

// List returns one page of events ordered by start time, and the number of
// events matching the filter.
func (d *EventDAO) List(ctx context.Context, offset, limit int, search string, publishedOnly bool) ([]Event, int64, error) {
	matching := func(db *gorm.DB) *gorm.DB {
		if publishedOnly {
			db = db.Where("status = ?", "PUBLISHED")
		}
		if search != "" {
			db = db.Where("LOWER(name || ' ' || location) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return db
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&Event{}).Scopes(matching).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []Event
	result := d.db.WithContext(ctx).
		Scopes(matching, page(offset, limit), withChildren).
		Order("start_date_time, id").
		Find(&events)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return events, total, nil
}

// Update overwrites the event's own columns. Tickets and questions are left
// alone.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Event
		if err := tx.First(&current, event.ID).Error; err != nil {
			return notFound(err, ErrEventNotFound)
		}

		event.CreatedAt = current.CreatedAt
		if err := tx.Omit(clause.Associations).Save(&event).Error; err != nil {
			return err
		}

		return tx.Scopes(withChildren).First(&event, event.ID).Error
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}

// Delete removes the event with its tickets and questions.
func (d *EventDAO) Delete(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Event{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}

		if err := tx.Where("event_id = ?", id).Delete(&Ticket{}).Error; err != nil {
			return err
		}

		var questionIDs []int64
		if err := tx.Model(&EventQuestion{}).Where("event_id = ?", id).Pluck("question_id", &questionIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", id).Delete(&EventQuestion{}).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			return tx.Delete(&Question{}, questionIDs).Error
		}

		return nil
	})
}

func (d *EventDAO) InsertTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := eventExists(tx, ticket.EventID); err != nil {
			return err
		}
		return tx.Create(&ticket).Error
	})
	if err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}

func (d *EventDAO) FindTicket(ctx context.Context, eventID, ticketID int64) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).First(&ticket, "id = ? AND event_id = ?", ticketID, eventID)
	if result.Error != nil {
		return Ticket{}, notFound(result.Error, ErrTicketNotFound)
	}

	return ticket, nil
}

func (d *EventDAO) ListTickets(ctx context.Context, eventID int64) ([]Ticket, error) {
	var tickets []Ticket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := eventExists(tx, eventID); err != nil {
			return err
		}
		return tx.Where("event_id = ?", eventID).Order("id").Find(&tickets).Error
	})
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

// UpdateTicket overwrites the ticket but keeps the number already sold.
func (d *EventDAO) UpdateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Ticket
		if err := tx.First(&current, "id = ? AND event_id = ?", ticket.ID, ticket.EventID).Error; err != nil {
			return notFound(err, ErrTicketNotFound)
		}

		ticket.QuantitySold = current.QuantitySold
		ticket.CreatedAt = current.CreatedAt
		return tx.Save(&ticket).Error
	})
	if err != nil {
		return Ticket{}, err
	}

	return ticket, nil
}

func (d *EventDAO) DeleteTicket(ctx context.Context, eventID, ticketID int64) error {
	result := d.db.WithContext(ctx).Where("id = ? AND event_id = ?", ticketID, eventID).Delete(&Ticket{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}

	return nil
}

func (d *EventDAO) InsertQuestion(ctx context.Context, question EventQuestion) (EventQuestion, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := eventExists(tx, question.EventID); err != nil {
			return err
		}

		question.Question.ID = 0
		if err := tx.Create(&question.Question).Error; err != nil {
			return err
		}
		question.QuestionID = question.Question.ID

		return tx.Omit("Question").Create(&question).Error
	})
	if err != nil {
		return EventQuestion{}, err
	}

	return question, nil
}

func (d *EventDAO) ListQuestions(ctx context.Context, eventID int64) ([]EventQuestion, error) {
	var questions []EventQuestion

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := eventExists(tx, eventID); err != nil {
			return err
		}
		return tx.Preload("Question").
			Where("event_id = ?", eventID).
			Order("display_order, id").
			Find(&questions).Error
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (d *EventDAO) UpdateQuestion(ctx context.Context, question EventQuestion) (EventQuestion, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current EventQuestion
		if err := tx.First(&current, "id = ? AND event_id = ?", question.ID, question.EventID).Error; err != nil {
			return notFound(err, ErrQuestionNotFound)
		}

		question.QuestionID = current.QuestionID
		question.Question.ID = current.QuestionID
		if err := tx.Save(&question.Question).Error; err != nil {
			return err
		}

		return tx.Omit("Question").Save(&question).Error
	})
	if err != nil {
		return EventQuestion{}, err
	}

	return question, nil
}

func (d *EventDAO) DeleteQuestion(ctx context.Context, eventID, eventQuestionID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current EventQuestion
		if err := tx.First(&current, "id = ? AND event_id = ?", eventQuestionID, eventID).Error; err != nil {
			return notFound(err, ErrQuestionNotFound)
		}

		if err := tx.Delete(&current).Error; err != nil {
			return err
		}

		return tx.Delete(&Question{}, current.QuestionID).Error
	})
}

func eventExists(tx *gorm.DB, id int64) error {
	var event Event
	if err := tx.Select("id").First(&event, id).Error; err != nil {
		return notFound(err, ErrEventNotFound)
	}
	return nil
}
