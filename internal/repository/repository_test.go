package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/db"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/repository/dao"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqliteDB, err := db.OpenSQLite(&config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := sqliteDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return sqliteDB
}

func seedEvent(t *testing.T, sqliteDB *gorm.DB, capacity, total int) (domain.Event, domain.TicketType) {
	t.Helper()

	events := NewEventRepository(dao.NewEventDAO(sqliteDB))
	event, err := events.Create(context.Background(), domain.Event{
		Name: "Quiz night", Capacity: capacity, Status: domain.EventStatusPublished,
	})
	require.NoError(t, err)
	ticket, err := events.CreateTicket(context.Background(), domain.TicketType{
		EventID: event.ID, Name: "Seat", QuantityTotal: total, Status: domain.TicketStatusActive,
	})
	require.NoError(t, err)

	return event, ticket
}

func participants(n int) []domain.ParticipantRequest {
	out := make([]domain.ParticipantRequest, n)
	for i := range out {
		out[i] = domain.ParticipantRequest{
			Email:     fmt.Sprintf("guest%d@example.com", i),
			FirstName: "Guest",
			LastName:  fmt.Sprint(i),
		}
	}
	return out
}

func TestRegistrationCreateTakesStock(t *testing.T) {
	sqliteDB := openDB(t)
	event, ticket := seedEvent(t, sqliteDB, 0, 3)
	repo := NewRegistrationRepository(dao.NewRegistrationDAO(sqliteDB))
	events := NewEventRepository(dao.NewEventDAO(sqliteDB))

	_, err := repo.Create(context.Background(), domain.Registration{
		ID: "r1", EventID: event.ID,
		Tickets:      []domain.TicketQuantity{{TicketID: ticket.ID, Quantity: 2}},
		Participants: participants(2),
	})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), domain.Registration{
		ID: "r2", EventID: event.ID,
		Tickets: []domain.TicketQuantity{{TicketID: ticket.ID, Quantity: 2}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = repo.Create(context.Background(), domain.Registration{
		ID: "r3", EventID: event.ID,
		Tickets: []domain.TicketQuantity{{TicketID: ticket.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := events.FindTicket(context.Background(), event.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantitySold)
	assert.Equal(t, domain.TicketStatusSoldOut, got.Status)

	regs, err := repo.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "r1", regs[0].ID)
	assert.Len(t, regs[0].Participants, 2)
	assert.Equal(t, "guest0@example.com", regs[0].Participants[0].Email)
}

func TestRegistrationCreateSumsRepeatedTicketLines(t *testing.T) {
	sqliteDB := openDB(t)
	event, ticket := seedEvent(t, sqliteDB, 0, 6)
	repo := NewRegistrationRepository(dao.NewRegistrationDAO(sqliteDB))

	_, err := repo.Create(context.Background(), domain.Registration{
		ID: "r1", EventID: event.ID,
		Tickets: []domain.TicketQuantity{
			{TicketID: ticket.ID, Quantity: 5},
			{TicketID: ticket.ID, Quantity: 5},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := NewEventRepository(dao.NewEventDAO(sqliteDB)).FindTicket(context.Background(), event.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.QuantitySold)

	created, err := repo.Create(context.Background(), domain.Registration{
		ID: "r2", EventID: event.ID,
		Tickets: []domain.TicketQuantity{
			{TicketID: ticket.ID, Quantity: 3},
			{TicketID: ticket.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.TicketQuantity{{TicketID: ticket.ID, Quantity: 6}}, created.Tickets)
}

func TestRegistrationCreateNeverOversells(t *testing.T) {
	sqliteDB := openDB(t)
	event, ticket := seedEvent(t, sqliteDB, 0, 5)
	repo := NewRegistrationRepository(dao.NewRegistrationDAO(sqliteDB))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.Create(context.Background(), domain.Registration{
				ID: fmt.Sprintf("r%d", i), EventID: event.ID,
				Tickets: []domain.TicketQuantity{{TicketID: ticket.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	got, err := NewEventRepository(dao.NewEventDAO(sqliteDB)).FindTicket(context.Background(), event.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.QuantitySold)
}

func TestRegistrationCreateNeverExceedsCapacity(t *testing.T) {
	sqliteDB := openDB(t)
	event, ticket := seedEvent(t, sqliteDB, 4, 0)
	repo := NewRegistrationRepository(dao.NewRegistrationDAO(sqliteDB))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		full int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(context.Background(), domain.Registration{
				ID: fmt.Sprintf("r%d", i), EventID: event.ID,
				Tickets:      []domain.TicketQuantity{{TicketID: ticket.ID, Quantity: 1}},
				Participants: participants(1),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrEventFull)
				mu.Lock()
				full++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 6, full)
	regs, err := repo.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 4)

	got, err := NewEventRepository(dao.NewEventDAO(sqliteDB)).FindTicket(context.Background(), event.ID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.QuantitySold)
	assert.Equal(t, domain.TicketStatusActive, got.Status)
}

func TestEventDeleteCascades(t *testing.T) {
	sqliteDB := openDB(t)
	event, ticket := seedEvent(t, sqliteDB, 0, 1)
	events := NewEventRepository(dao.NewEventDAO(sqliteDB))

	question, err := events.CreateQuestion(context.Background(), domain.EventQuestion{
		EventID: event.ID, IsRequired: true,
		Question: domain.Question{QuestionText: "T-shirt size", QuestionType: domain.QuestionTypeSelect},
	})
	require.NoError(t, err)

	require.NoError(t, events.Delete(context.Background(), event.ID))

	_, err = events.FindByID(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	_, err = events.FindTicket(context.Background(), event.ID, ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.ErrorIs(t, events.DeleteQuestion(context.Background(), event.ID, question.ID), ErrQuestionNotFound)
	assert.ErrorIs(t, events.Delete(context.Background(), event.ID), ErrEventNotFound)
}

func TestEventQuestionsKeepDisplayOrderAndRules(t *testing.T) {
	sqliteDB := openDB(t)
	event, _ := seedEvent(t, sqliteDB, 0, 0)
	events := NewEventRepository(dao.NewEventDAO(sqliteDB))

	second, err := events.CreateQuestion(context.Background(), domain.EventQuestion{
		EventID: event.ID, DisplayOrder: 2,
		Question: domain.Question{QuestionText: "Allergies", QuestionType: domain.QuestionTypeText},
	})
	require.NoError(t, err)
	first, err := events.CreateQuestion(context.Background(), domain.EventQuestion{
		EventID: event.ID, DisplayOrder: 1, IsRequired: true,
		Question: domain.Question{
			QuestionText:    "Meal",
			QuestionType:    domain.QuestionTypeSelect,
			ValidationRules: &domain.ValidationRules{Options: []string{"Meat", "Fish"}},
		},
	})
	require.NoError(t, err)

	found, err := events.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, found.EventQuestions, 2)
	assert.Equal(t, first.ID, found.EventQuestions[0].ID)
	assert.Equal(t, second.ID, found.EventQuestions[1].ID)
	require.NotNil(t, found.EventQuestions[0].Question.ValidationRules)
	assert.Equal(t, []string{"Meat", "Fish"}, found.EventQuestions[0].Question.ValidationRules.Options)
	assert.Nil(t, found.EventQuestions[1].Question.ValidationRules)

	first.Question.QuestionText = "Meal preference"
	_, err = events.UpdateQuestion(context.Background(), first)
	require.NoError(t, err)

	listed, err := events.ListQuestions(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meal preference", listed[0].Question.QuestionText)
	assert.Equal(t, first.Question.ID, listed[0].Question.ID)
}

func TestUserEmailIsUnique(t *testing.T) {
	users := NewUserRepository(dao.NewUserDAO(openDB(t)))

	_, err := users.Create(context.Background(), domain.User{Email: "Ada@Example.com"}, "hash")
	require.NoError(t, err)

	_, err = users.Create(context.Background(), domain.User{Email: "ada@example.com"}, "hash")
	assert.ErrorIs(t, err, ErrUserEmailExists)

	found, err := users.FindByEmail(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", found.Email)
	assert.Equal(t, domain.RoleUser, found.Role)
}

func TestUserDeleteRevokesRefreshTokens(t *testing.T) {
	sqliteDB := openDB(t)
	users := NewUserRepository(dao.NewUserDAO(sqliteDB))
	tokens := NewRefreshTokenRepository(dao.NewRefreshTokenDAO(sqliteDB))

	user, err := users.Create(context.Background(), domain.User{Email: "grace@example.com"}, "hash")
	require.NoError(t, err)
	require.NoError(t, tokens.Create(context.Background(), RefreshToken{Token: "t1", UserID: user.ID}))

	require.NoError(t, tokens.Rotate(context.Background(), "t1", RefreshToken{Token: "t2", UserID: user.ID}))
	assert.ErrorIs(t, tokens.Rotate(context.Background(), "t1", RefreshToken{Token: "t3", UserID: user.ID}), ErrRefreshTokenNotFound)

	require.NoError(t, users.Delete(context.Background(), user.ID))
	_, err = tokens.Find(context.Background(), "t2")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	assert.ErrorIs(t, users.Delete(context.Background(), user.ID), ErrUserNotFound)
}

func TestUserListSearches(t *testing.T) {
	users := NewUserRepository(dao.NewUserDAO(openDB(t)))

	for _, email := range []string{"ada@example.com", "grace@example.com", "alan@example.com"} {
		_, err := users.Create(context.Background(), domain.User{Email: email, FirstName: "X", LastName: "Y"}, "hash")
		require.NoError(t, err)
	}

	page, total, err := users.List(context.Background(), 0, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "ada@example.com", page[0].Email)

	page, total, err = users.List(context.Background(), 0, 10, "GRACE")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, "grace@example.com", page[0].Email)
}
