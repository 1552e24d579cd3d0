package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/request"
	"github.com/eventreg/regclient/internal/api/handler/v1/response"
)

func (h *EventHandler) HandleListTickets(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	tickets, err := h.svc.ListTickets(ctx.Request.Context(), eventID)
	if err != nil {
		renderEventErr(ctx, "v1.HandleListTickets -> h.svc.ListTickets", err)
		return
	}

	response.Render(ctx, http.StatusOK, tickets)
}

func (h *EventHandler) HandleGetTicket(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(ctx, "ticketId")
	if !ok {
		return
	}

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), eventID, ticketID)
	if err != nil {
		renderEventErr(ctx, "v1.HandleGetTicket -> h.svc.GetTicket", err)
		return
	}

	response.Render(ctx, http.StatusOK, ticket)
}

// HandleTicketAvailability answers whether ?quantity= tickets (1 by
// default) can be bought right now.
func (h *EventHandler) HandleTicketAvailability(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(ctx, "ticketId")
	if !ok {
		return
	}

	quantity := queryInt(ctx, "quantity", 1)
	if quantity < 1 {
		response.RenderErr(ctx, response.ErrInvalidID("quantity"))
		return
	}

	availability, err := h.svc.Availability(ctx.Request.Context(), eventID, ticketID, quantity, h.now())
	if err != nil {
		renderEventErr(ctx, "v1.HandleTicketAvailability -> h.svc.Availability", err)
		return
	}

	response.Render(ctx, http.StatusOK, availability)
}

func (h *EventHandler) HandleCreateTicket(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.TicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.CreateTicket(ctx.Request.Context(), req.ToDomain(eventID))
	if err != nil {
		renderEventErr(ctx, "v1.HandleCreateTicket -> h.svc.CreateTicket", err)
		return
	}

	response.Render(ctx, http.StatusCreated, ticket)
}

func (h *EventHandler) HandleUpdateTicket(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(ctx, "ticketId")
	if !ok {
		return
	}

	var req request.TicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket := req.ToDomain(eventID)
	ticket.ID = ticketID
	updated, err := h.svc.UpdateTicket(ctx.Request.Context(), ticket)
	if err != nil {
		renderEventErr(ctx, "v1.HandleUpdateTicket -> h.svc.UpdateTicket", err)
		return
	}

	response.Render(ctx, http.StatusOK, updated)
}

func (h *EventHandler) HandleDeleteTicket(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ticketID, ok := pathID(ctx, "ticketId")
	if !ok {
		return
	}

	if err := h.svc.DeleteTicket(ctx.Request.Context(), eventID, ticketID); err != nil {
		renderEventErr(ctx, "v1.HandleDeleteTicket -> h.svc.DeleteTicket", err)
		return
	}

	response.RenderMessage(ctx, http.StatusOK, "ticket deleted")
}
