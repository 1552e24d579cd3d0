package registration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEventStartsEmpty(t *testing.T) {
	s := NewSession()
	assert.False(t, s.IsEventLoaded())

	s.LoadEvent(paidEvent())

	require.True(t, s.IsEventLoaded())
	assert.Equal(t, int64(42), s.EventID())
	tickets := s.Tickets()
	require.Len(t, tickets, 2)
	for _, ticket := range tickets {
		assert.Zero(t, ticket.Quantity)
	}
	assert.Zero(t, s.ParticipantCount())
}

func TestLoadEventFreeEventHasOneParticipant(t *testing.T) {
	s := NewSession()
	s.LoadEvent(freeEvent())

	require.Equal(t, 1, s.ParticipantCount())
	responses := s.Participants()[0].Responses
	require.Len(t, responses, 1)
	assert.Equal(t, int64(200), responses[0].EventQuestionID)
	assert.True(t, responses[0].IsRequired)
	assert.Empty(t, responses[0].ResponseText)
}

func TestLoadEventSnapshotIsIsolated(t *testing.T) {
	ev := paidEvent()
	s := NewSession()
	s.LoadEvent(ev)

	ev.Tickets[0].Name = "changed"
	ev.EventQuestions = nil

	loaded, ok := s.Event()
	require.True(t, ok)
	assert.Equal(t, "General", loaded.Tickets[0].Name)
	assert.Len(t, loaded.EventQuestions, 2)
}

func TestSetTicketQuantity(t *testing.T) {
	tests := []struct {
		name         string
		quantity     int
		wantQuantity int
	}{
		{name: "positive", quantity: 3, wantQuantity: 3},
		{name: "zero", quantity: 0, wantQuantity: 0},
		{name: "negative is clamped", quantity: -2, wantQuantity: 0},
		{name: "clamped to remaining stock", quantity: 3_000_000, wantQuantity: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.LoadEvent(paidEvent())

			s.SetTicketQuantity(10, tt.quantity)

			assert.Equal(t, tt.wantQuantity, s.Tickets()[0].Quantity)
			assert.Equal(t, tt.wantQuantity, s.ParticipantCount())
		})
	}
}

func TestSetTicketQuantityLastTicketsLeft(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())

	s.SetTicketQuantity(11, 2)
	assert.Equal(t, 1, s.Tickets()[1].Quantity)
	assert.Equal(t, 1, s.ParticipantCount())
}

func TestSetTicketQuantityUnknownTicket(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())
	s.SetTicketQuantity(10, 1)

	s.SetTicketQuantity(999, 5)

	assert.Equal(t, 1, s.TotalSelectedTickets())
	assert.Equal(t, 1, s.ParticipantCount())
}

func TestParticipantCountFollowsTickets(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())

	s.SetTicketQuantity(10, 2)
	s.SetTicketQuantity(11, 1)
	assert.Equal(t, 3, s.ParticipantCount())

	s.SetTicketQuantity(10, 0)
	assert.Equal(t, 1, s.ParticipantCount())

	s.SetTicketQuantity(11, 0)
	assert.Equal(t, 0, s.ParticipantCount())
}

func TestFreeEventKeepsOneParticipantWithoutTickets(t *testing.T) {
	s := NewSession()
	s.LoadEvent(freeEvent())

	s.SetTicketQuantity(70, 2)
	assert.Equal(t, 2, s.ParticipantCount())

	s.SetTicketQuantity(70, 0)
	assert.Equal(t, 1, s.ParticipantCount())
}

func TestRecomputeParticipantsIsIdempotent(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())
	s.SetTicketQuantity(10, 2)
	fillParticipant(s, 0, "ada@example.com")
	s.SetParticipantResponse(0, 100, "M")

	before := s.Participants()
	s.RecomputeParticipants()
	s.RecomputeParticipants()

	assert.Equal(t, before, s.Participants())
}

func TestRecomputePreservesEnteredData(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())
	s.SetTicketQuantity(10, 1)
	fillParticipant(s, 0, "ada@example.com")
	s.SetParticipantResponse(0, 100, "L")
	s.SetParticipantResponse(0, 101, "vegan")

	s.SetTicketQuantity(10, 3)

	participants := s.Participants()
	require.Len(t, participants, 3)
	assert.Equal(t, "ada@example.com", participants[0].Email)
	assert.Equal(t, "L", participants[0].Responses[0].ResponseText)
	assert.Equal(t, "vegan", participants[0].Responses[1].ResponseText)
	assert.Empty(t, participants[1].Email)
	assert.Len(t, participants[2].Responses, 2)
}

func TestTruncationDropsTrailingParticipants(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())
	s.SetTicketQuantity(10, 2)
	fillParticipant(s, 0, "first@example.com")
	fillParticipant(s, 1, "second@example.com")

	s.SetTicketQuantity(10, 1)
	s.SetTicketQuantity(10, 2)

	participants := s.Participants()
	assert.Equal(t, "first@example.com", participants[0].Email)
	assert.Empty(t, participants[1].Email)
}

func TestSetParticipantFieldMerges(t *testing.T) {
	s := NewSession()
	s.LoadEvent(freeEvent())

	s.SetParticipantField(0, ParticipantFields{Email: Text("ada@example.com")})
	s.SetParticipantField(0, ParticipantFields{City: Text("London")})

	p := s.Participants()[0]
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "London", p.City)
}

func TestOutOfRangeUpdatesAreIgnored(t *testing.T) {
	s := NewSession()
	s.LoadEvent(freeEvent())
	before := s.Participants()

	s.SetParticipantField(-1, ParticipantFields{Email: Text("x@example.com")})
	s.SetParticipantField(5, ParticipantFields{Email: Text("x@example.com")})
	s.SetParticipantResponse(3, 200, "ignored")
	s.SetParticipantResponse(0, 999, "ignored")

	assert.Equal(t, before, s.Participants())
}

func TestParticipantsReturnsCopies(t *testing.T) {
	s := NewSession()
	s.LoadEvent(freeEvent())

	p := s.Participants()
	p[0].Email = "mutated@example.com"
	p[0].Responses[0].ResponseText = "mutated"

	fresh := s.Participants()[0]
	assert.Empty(t, fresh.Email)
	assert.Empty(t, fresh.Responses[0].ResponseText)
}

func TestTotalAmount(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())
	s.SetTicketQuantity(10, 2)
	s.SetTicketQuantity(11, 1)

	assert.True(t, decimal.RequireFromString("131").Equal(s.TotalAmount()), s.TotalAmount().String())

	free := NewSession()
	free.LoadEvent(freeEvent())
	free.SetTicketQuantity(70, 3)
	assert.True(t, free.TotalAmount().IsZero())
}

func TestRecordSubmissionResultAndReset(t *testing.T) {
	s := NewSession()
	s.LoadEvent(paidEvent())
	s.SetTicketQuantity(10, 1)

	_, ok := s.Result()
	assert.False(t, ok)

	s.RecordSubmissionResult("reg-1", "pay-1")
	res, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, SubmissionResult{RegistrationID: "reg-1", PaymentToken: "pay-1"}, res)
	assert.Equal(t, 1, s.ParticipantCount())

	s.SetStep(StepReview)
	s.Reset()

	assert.False(t, s.IsEventLoaded())
	assert.Zero(t, s.EventID())
	assert.Zero(t, s.ParticipantCount())
	assert.Empty(t, s.Tickets())
	assert.Equal(t, StepTicketSelection, s.Step())
	_, ok = s.Result()
	assert.False(t, ok)
}

func TestSteps(t *testing.T) {
	s := NewSession()
	assert.Equal(t, StepTicketSelection, s.Step())

	s.PrevStep()
	assert.Equal(t, StepTicketSelection, s.Step())

	s.NextStep()
	s.NextStep()
	assert.Equal(t, StepQuestionnaire, s.Step())
	assert.Equal(t, "questionnaire", s.Step().String())

	s.NextStep()
	s.NextStep()
	assert.Equal(t, StepReview, s.Step())

	s.SetStep(Step(42))
	assert.Equal(t, StepReview, s.Step())
}

func TestOnSale(t *testing.T) {
	ticket := TicketSelection{
		SalesStart: fixtureNow,
		SalesEnd:   fixtureNow.AddDate(0, 0, 1),
	}

	assert.True(t, ticket.OnSale(fixtureNow))
	assert.False(t, ticket.OnSale(fixtureNow.Add(-1)))
	assert.False(t, ticket.OnSale(fixtureNow.AddDate(0, 0, 2)))
	assert.True(t, TicketSelection{}.OnSale(fixtureNow))
}
