package registration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventreg/regclient/internal/domain"
)

var fixtureNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func paidEvent() domain.Event {
	return domain.Event{
		ID:     42,
		Name:   "Spring Gala",
		IsFree: false,
		Tickets: []domain.TicketType{
			{
				ID: 10, EventID: 42, Name: "General", Price: decimal.RequireFromString("25.50"),
				QuantityTotal: 100, QuantitySold: 10, Status: domain.TicketStatusActive,
				SalesStart: fixtureNow.Add(-24 * time.Hour), SalesEnd: fixtureNow.Add(24 * time.Hour),
			},
			{
				ID: 11, EventID: 42, Name: "VIP", Price: decimal.RequireFromString("80"),
				QuantityTotal: 5, QuantitySold: 4, Status: domain.TicketStatusActive,
			},
		},
		EventQuestions: []domain.EventQuestion{
			{
				ID: 100, EventID: 42, IsRequired: true, DisplayOrder: 1,
				Question: domain.Question{ID: 1, QuestionText: "T-shirt size", QuestionType: domain.QuestionTypeSelect,
					ValidationRules: &domain.ValidationRules{Options: []string{"S", "M", "L"}}},
			},
			{
				ID: 101, EventID: 42, IsRequired: false, DisplayOrder: 2,
				Question: domain.Question{ID: 2, QuestionText: "Dietary needs", QuestionType: domain.QuestionTypeText},
			},
		},
	}
}

func freeEvent() domain.Event {
	return domain.Event{
		ID:     7,
		Name:   "Park Cleanup",
		IsFree: true,
		Tickets: []domain.TicketType{
			{ID: 70, EventID: 7, Name: "Volunteer", Price: decimal.Zero, Status: domain.TicketStatusActive},
		},
		EventQuestions: []domain.EventQuestion{
			{
				ID: 200, EventID: 7, IsRequired: true, DisplayOrder: 1,
				Question: domain.Question{ID: 3, QuestionText: "Emergency contact", QuestionType: domain.QuestionTypeText},
			},
		},
	}
}

func fillParticipant(s *Session, index int, email string) {
	s.SetParticipantField(index, ParticipantFields{
		Email:     Text(email),
		FirstName: Text("Ada"),
		LastName:  Text("Lovelace"),
	})
}
