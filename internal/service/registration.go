package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/registration"
)

type EventGetter interface {
	Get(ctx context.Context, id int64) (domain.Event, error)
}

type RegistrationService struct {
	gw     Requester
	events EventGetter
	now    func() time.Time
}

func NewRegistrationService(gw Requester, events EventGetter) *RegistrationService {
	return &RegistrationService{
		gw:     gw,
		events: events,
		now:    time.Now,
	}
}

// Create posts a registration. It works signed in or not; a signed-in
// registration is linked to the account.
func (s *RegistrationService) Create(ctx context.Context, req domain.RegistrationRequest) (domain.RegistrationResult, error) {
	var result domain.RegistrationResult
	if err := s.gw.DoJSON(ctx, http.MethodPost, "/registrations", req, &result); err != nil {
		return domain.RegistrationResult{}, fmt.Errorf("s.gw.DoJSON -> %w", err)
	}

	return result, nil
}

// LoadEvent fetches eventID and starts a fresh registration for it in sess.
func (s *RegistrationService) LoadEvent(ctx context.Context, sess *registration.Session, eventID int64) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.events.Get -> %w", err)
	}

	sess.Reset()
	sess.LoadEvent(event)

	return nil
}

// Submit validates sess, sends it, and records the result in it.
func (s *RegistrationService) Submit(ctx context.Context, sess *registration.Session) (domain.RegistrationResult, error) {
	if err := sess.Validate(s.now()); err != nil {
		return domain.RegistrationResult{}, err
	}

	payload, err := sess.BuildSubmissionPayload()
	if err != nil {
		return domain.RegistrationResult{}, err
	}

	result, err := s.Create(ctx, payload)
	if err != nil {
		return domain.RegistrationResult{}, err
	}

	sess.RecordSubmissionResult(result.RegistrationID, result.PaymentToken)

	return result, nil
}
