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

type EventService interface {
	ListEvents(ctx context.Context, page, limit int, search string, publishedOnly bool) (domain.Page[domain.Event], error)
	GetEvent(ctx context.Context, id int64, includeDrafts bool) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	Report(ctx context.Context, id int64) (domain.EventReport, error)

	ListTickets(ctx context.Context, eventID int64) ([]domain.TicketType, error)
	GetTicket(ctx context.Context, eventID, ticketID int64) (domain.TicketType, error)
	CreateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error)
	UpdateTicket(ctx context.Context, ticket domain.TicketType) (domain.TicketType, error)
	DeleteTicket(ctx context.Context, eventID, ticketID int64) error
	Availability(ctx context.Context, eventID, ticketID int64, quantity int, now time.Time) (domain.TicketAvailability, error)

	ListQuestions(ctx context.Context, eventID int64) ([]domain.EventQuestion, error)
	CreateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error)
	UpdateQuestion(ctx context.Context, question domain.EventQuestion) (domain.EventQuestion, error)
	DeleteQuestion(ctx context.Context, eventID, eventQuestionID int64) error
}

type EventHandler struct {
	svc EventService
	now func() time.Time
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
		now: time.Now,
	}
}

// HandleListEvents shows drafts to admins unless publicView=true is set.
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	publishedOnly := ctx.Query("publicView") == "true" || !middleware.IsAdmin(ctx)

	page, err := h.svc.ListEvents(ctx.Request.Context(),
		queryInt(ctx, "page", 1),
		queryInt(ctx, "limit", 0),
		ctx.Query("search"),
		publishedOnly,
	)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, page)
}

func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), id, middleware.IsAdmin(ctx))
	if err != nil {
		renderEventErr(ctx, "v1.HandleGetEvent -> h.svc.GetEvent", err)
		return
	}

	response.Render(ctx, http.StatusOK, event)
}

func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), req.ToDomain())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusCreated, event)
}

func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event := req.ToDomain()
	event.ID = id
	updated, err := h.svc.UpdateEvent(ctx.Request.Context(), event)
	if err != nil {
		renderEventErr(ctx, "v1.HandleUpdateEvent -> h.svc.UpdateEvent", err)
		return
	}

	response.Render(ctx, http.StatusOK, updated)
}

func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), id); err != nil {
		renderEventErr(ctx, "v1.HandleDeleteEvent -> h.svc.DeleteEvent", err)
		return
	}

	response.RenderMessage(ctx, http.StatusOK, "event deleted")
}

func (h *EventHandler) HandleEventReport(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	report, err := h.svc.Report(ctx.Request.Context(), id)
	if err != nil {
		renderEventErr(ctx, "v1.HandleEventReport -> h.svc.Report", err)
		return
	}

	response.Render(ctx, http.StatusOK, report)
}

// renderEventErr maps the not-found errors of events, tickets and questions.
func renderEventErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, backend.ErrEventNotFound):
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", ctx.Param("id")))
	case errors.Is(err, backend.ErrTicketNotFound):
		response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ctx.Param("ticketId")))
	case errors.Is(err, backend.ErrQuestionNotFound):
		response.RenderErr(ctx, response.ErrNotFound("question", "ID", ctx.Param("eventQuestionId")))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
	}
}
