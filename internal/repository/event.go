package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository/dao"
)

type EventFilter struct {
	Offset        int
	Limit         int
	Search        string
	PublishedOnly bool
}

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id int64) (dao.Event, error)
	List(ctx context.Context, offset, limit int, search string, publishedOnly bool) ([]dao.Event, int64, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	Delete(ctx context.Context, id int64) error
	InsertTicket(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindTicket(ctx context.Context, eventID, ticketID int64) (dao.Ticket, error)
	ListTickets(ctx context.Context, eventID int64) ([]dao.Ticket, error)
	UpdateTicket(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	DeleteTicket(ctx context.Context, eventID, ticketID int64) error
	InsertQuestion(ctx context.Context, question dao.EventQuestion) (dao.EventQuestion, error)
	ListQuestions(ctx context.Context, eventID int64) ([]dao.EventQuestion, error)
	UpdateQuestion(ctx context.Context, question dao.EventQuestion) (dao.EventQuestion, error)
	DeleteQuestion(ctx context.Context, eventID, eventQuestionID int64) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventToDomain(created), nil
}

// FindByID returns the event with its tickets and questions.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return eventToDomain(found), nil
}

func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, int, error) {
	found, total, err := r.dao.List(ctx, filter.Offset, filter.Limit, strings.TrimSpace(filter.Search), filter.PublishedOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, eventToDomain(e))
	}

	return events, int(total), nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, eventToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return eventToDomain(updated), nil
}

// Delete removes the event with its tickets and questions.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *EventRepository) CreateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error) {
	created, err := r.dao.InsertTicket(ctx, ticketToDAO(ticket))
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("r.dao.InsertTicket -> %w", err)
	}

	return ticketToDomain(created), nil
}

func (r *EventRepository) FindTicket(ctx context.Context, eventID, ticketID int64) (domain.TicketType, error) {
	found, err := r.dao.FindTicket(ctx, eventID, ticketID)
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("r.dao.FindTicket -> %w", err)
	}

	return ticketToDomain(found), nil
}

func (r *EventRepository) ListTickets(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	found, err := r.dao.ListTickets(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListTickets -> %w", err)
	}

	return ticketsToDomain(found), nil
}

func (r *EventRepository) UpdateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error) {
	updated, err := r.dao.UpdateTicket(ctx, ticketToDAO(ticket))
	if err != nil {
		return domain.TicketType{}, fmt.Errorf("r.dao.UpdateTicket -> %w", err)
	}

	return ticketToDomain(updated), nil
}

func (r *EventRepository) DeleteTicket(ctx context.Context, eventID, ticketID int64) error {
	if err := r.dao.DeleteTicket(ctx, eventID, ticketID); err != nil {
		return fmt.Errorf("r.dao.DeleteTicket -> %w", err)
	}

	return nil
}

func (r *EventRepository) CreateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error) {
	created, err := r.dao.InsertQuestion(ctx, questionToDAO(question))
	if err != nil {
		return domain.EventQuestion{}, fmt.Errorf("r.dao.InsertQuestion -> %w", err)
	}

	return questionToDomain(created), nil
}

func (r *EventRepository) ListQuestions(ctx context.Context, eventID int64) ([]domain.EventQuestion, error) {
	found, err := r.dao.ListQuestions(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListQuestions -> %w", err)
	}

	return questionsToDomain(found), nil
}

func (r *EventRepository) UpdateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error) {
	updated, err := r.dao.UpdateQuestion(ctx, questionToDAO(question))
	if err != nil {
		return domain.EventQuestion{}, fmt.Errorf("r.dao.UpdateQuestion -> %w", err)
	}

	return questionToDomain(updated), nil
}

func (r *EventRepository) DeleteQuestion(ctx context.Context, eventID, eventQuestionID int64) error {
	if err := r.dao.DeleteQuestion(ctx, eventID, eventQuestionID); err != nil {
		return fmt.Errorf("r.dao.DeleteQuestion -> %w", err)
	}

	return nil
}

func eventToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:            e.ID,
		Name:          e.Name,
		Description:   e.Description,
		EventType:     string(e.EventType),
		Location:      e.Location,
		Capacity:      e.Capacity,
		IsFree:        e.IsFree,
		StartDateTime: e.StartDateTime,
		EndDateTime:   e.EndDateTime,
		ImageURL:      e.ImageURL,
		Status:        e.Status,
	}
}

func eventToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		EventType:      domain.EventType(e.EventType),
		Location:       e.Location,
		Capacity:       e.Capacity,
		IsFree:         e.IsFree,
		StartDateTime:  e.StartDateTime,
		EndDateTime:    e.EndDateTime,
		ImageURL:       e.ImageURL,
		Status:         e.Status,
		Tickets:        ticketsToDomain(e.Tickets),
		EventQuestions: questionsToDomain(e.Questions),
	}
}

func ticketToDAO(t domain.TicketType) dao.Ticket {
	return dao.Ticket{
		ID:            t.ID,
		EventID:       t.EventID,
		Name:          t.Name,
		Description:   t.Description,
		Price:         t.Price,
		QuantityTotal: t.QuantityTotal,
		QuantitySold:  t.QuantitySold,
		SalesStart:    t.SalesStart,
		SalesEnd:      t.SalesEnd,
		Status:        string(t.Status),
	}
}

func ticketToDomain(t dao.Ticket) domain.TicketType {
	return domain.TicketType{
		ID:            t.ID,
		EventID:       t.EventID,
		Name:          t.Name,
		Description:   t.Description,
		Price:         t.Price,
		QuantityTotal: t.QuantityTotal,
		QuantitySold:  t.QuantitySold,
		SalesStart:    t.SalesStart,
		SalesEnd:      t.SalesEnd,
		Status:        domain.TicketStatus(t.Status),
	}
}

func ticketsToDomain(tickets []dao.Ticket) []domain.TicketType {
	out := make([]domain.TicketType, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketToDomain(t))
	}
	return out
}

func questionToDAO(q domain.EventQuestion) dao.EventQuestion {
	question := dao.Question{
		ID:           q.Question.ID,
		QuestionText: q.Question.QuestionText,
		QuestionType: string(q.Question.QuestionType),
		Category:     q.Question.Category,
	}
	if rules := q.Question.ValidationRules; rules != nil {
		question.ValidationRules = &dao.ValidationRules{
			Options:   rules.Options,
			MinLength: rules.MinLength,
			MaxLength: rules.MaxLength,
			Pattern:   rules.Pattern,
		}
	}

	return dao.EventQuestion{
		ID:           q.ID,
		EventID:      q.EventID,
		QuestionID:   q.Question.ID,
		Question:     question,
		IsRequired:   q.IsRequired,
		DisplayOrder: q.DisplayOrder,
	}
}

func questionToDomain(q dao.EventQuestion) domain.EventQuestion {
	question := domain.Question{
		ID:           q.QuestionID,
		QuestionText: q.Question.QuestionText,
		QuestionType: domain.QuestionType(q.Question.QuestionType),
		Category:     q.Question.Category,
	}
	if rules := q.Question.ValidationRules; rules != nil {
		question.ValidationRules = &domain.ValidationRules{
			Options:   rules.Options,
			MinLength: rules.MinLength,
			MaxLength: rules.MaxLength,
			Pattern:   rules.Pattern,
		}
	}

	return domain.EventQuestion{
		ID:           q.ID,
		EventID:      q.EventID,
		IsRequired:   q.IsRequired,
		DisplayOrder: q.DisplayOrder,
		Question:     question,
	}
}

func questionsToDomain(questions []dao.EventQuestion) []domain.EventQuestion {
	out := make([]domain.EventQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, questionToDomain(q))
	}
	return out
}
