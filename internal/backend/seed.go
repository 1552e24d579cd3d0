package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/eventreg/regclient/internal/domain"
)

const (
	DemoAdminEmail    = "admin@example.com"
	DemoAdminPassword = "admin1234"
	DemoUserEmail     = "user@example.com"
	DemoUserPassword  = "user1234"
)

// Seed loads demo accounts and two published events, one free and one paid,
// whose ticket sales are open at now.
func Seed(ctx context.Context, users *UserService, events *EventService, now time.Time) error {
	accounts := []struct {
		user     domain.User
		password string
	}{
		{domain.User{Email: DemoAdminEmail, FirstName: "Demo", LastName: "Admin", Role: domain.RoleAdmin}, DemoAdminPassword},
		{domain.User{Email: DemoUserEmail, FirstName: "Demo", LastName: "User", Role: domain.RoleUser}, DemoUserPassword},
	}
	for _, a := range accounts {
		if _, err := users.CreateUser(ctx, a.user, a.password); err != nil {
			// A persistent database keeps the demo data between runs.
			if errors.Is(err, ErrUserEmailExists) {
				zap.L().Info("demo data already present")
				return nil
			}
			return fmt.Errorf("users.CreateUser -> %w", err)
		}
	}

	day := 24 * time.Hour
	salesStart := now.Add(-day)

	cleanup, err := events.CreateEvent(ctx, domain.Event{
		Name:          "Riverside Park Cleanup",
		Description:   "Help us clean the riverside trail. Gloves and bags provided.",
		EventType:     domain.EventTypeVolunteering,
		Location:      "Riverside Park, north gate",
		Capacity:      50,
		IsFree:        true,
		StartDateTime: now.Add(14 * day),
		EndDateTime:   now.Add(14*day + 4*time.Hour),
		Status:        domain.EventStatusPublished,
	})
	if err != nil {
		return fmt.Errorf("events.CreateEvent -> %w", err)
	}
	if _, err = events.CreateTicket(ctx, domain.TicketType{
		EventID: cleanup.ID, Name: "Volunteer", Price: decimal.Zero, QuantityTotal: 50,
		SalesStart: salesStart, SalesEnd: cleanup.StartDateTime,
	}); err != nil {
		return fmt.Errorf("events.CreateTicket -> %w", err)
	}
	if _, err = events.CreateQuestion(ctx, domain.EventQuestion{
		EventID: cleanup.ID, IsRequired: true, DisplayOrder: 1,
		Question: domain.Question{
			QuestionText:    "Emergency contact phone",
			QuestionType:    domain.QuestionTypeText,
			ValidationRules: &domain.ValidationRules{Pattern: `\+?[0-9 ()-]{6,20}`},
		},
	}); err != nil {
		return fmt.Errorf("events.CreateQuestion -> %w", err)
	}

	gala, err := events.CreateEvent(ctx, domain.Event{
		Name:          "Spring Charity Gala",
		Description:   "Dinner, music and an auction for the community library.",
		EventType:     domain.EventTypeSocial,
		Location:      "Grand Hall",
		Capacity:      120,
		StartDateTime: now.Add(30 * day),
		EndDateTime:   now.Add(30*day + 5*time.Hour),
		Status:        domain.EventStatusPublished,
	})
	if err != nil {
		return fmt.Errorf("events.CreateEvent -> %w", err)
	}
	for _, t := range []domain.TicketType{
		{Name: "General admission", Price: decimal.RequireFromString("45.00"), QuantityTotal: 100},
		{Name: "VIP table seat", Price: decimal.RequireFromString("120.00"), QuantityTotal: 20},
	} {
		t.EventID = gala.ID
		t.SalesStart = salesStart
		t.SalesEnd = gala.StartDateTime
		if _, err = events.CreateTicket(ctx, t); err != nil {
			return fmt.Errorf("events.CreateTicket -> %w", err)
		}
	}
	for _, q := range []domain.EventQuestion{
		{IsRequired: true, DisplayOrder: 1, Question: domain.Question{
			QuestionText:    "Meal preference",
			QuestionType:    domain.QuestionTypeSelect,
			ValidationRules: &domain.ValidationRules{Options: []string{"Meat", "Fish", "Vegetarian", "Vegan"}},
		}},
		{IsRequired: false, DisplayOrder: 2, Question: domain.Question{
			QuestionText:    "Allergies",
			QuestionType:    domain.QuestionTypeText,
			ValidationRules: &domain.ValidationRules{MaxLength: 200},
		}},
	} {
		q.EventID = gala.ID
		if _, err = events.CreateQuestion(ctx, q); err != nil {
			return fmt.Errorf("events.CreateQuestion -> %w", err)
		}
	}

	zap.L().Info("demo data seeded",
		zap.Int64("free_event_id", cleanup.ID),
		zap.Int64("paid_event_id", gala.ID),
	)

	return nil
}
