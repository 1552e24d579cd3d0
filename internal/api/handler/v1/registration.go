package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/request"
	"github.com/eventreg/regclient/internal/api/handler/v1/response"
	"github.com/eventreg/regclient/internal/api/middleware"
	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/domain"
)

type RegistrationService interface {
	Register(ctx context.Context, req domain.RegistrationRequest, userID *int64, now time.Time) (domain.RegistrationResult, error)
}

type RegistrationHandler struct {
	svc RegistrationService
	now func() time.Time
}

func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		svc: svc,
		now: time.Now,
	}
}

// HandleCreateRegistration accepts anonymous and signed-in registrations.
func (h *RegistrationHandler) HandleCreateRegistration(ctx *gin.Context) {
	var req request.RegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var userID *int64
	if id, ok := middleware.UserID(ctx); ok {
		userID = &id
	}

	result, err := h.svc.Register(ctx.Request.Context(), req.RegistrationRequest, userID, h.now())
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", req.EventID))
		case errors.Is(err, backend.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("unknown ticket for this event")))
		case errors.Is(err, backend.ErrInvalidRegistration),
			errors.Is(err, backend.ErrRegistrationClosed),
			errors.Is(err, backend.ErrTicketNotOnSale):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, backend.ErrEventFull):
			response.RenderErr(ctx, response.ErrConflict(backend.ErrEventFull))
		case errors.Is(err, backend.ErrInsufficientStock):
			response.RenderErr(ctx, response.ErrConflict(backend.ErrInsufficientStock))
		default:
			err = fmt.Errorf("v1.HandleCreateRegistration -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	response.Render(ctx, http.StatusCreated, result)
}
