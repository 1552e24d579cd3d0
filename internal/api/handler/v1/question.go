package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/request"
	"github.com/eventreg/regclient/internal/api/handler/v1/response"
)

func (h *EventHandler) HandleListQuestions(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	questions, err := h.svc.ListQuestions(ctx.Request.Context(), eventID)
	if err != nil {
		renderEventErr(ctx, "v1.HandleListQuestions -> h.svc.ListQuestions", err)
		return
	}

	response.Render(ctx, http.StatusOK, questions)
}

func (h *EventHandler) HandleCreateQuestion(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req request.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	question, err := h.svc.CreateQuestion(ctx.Request.Context(), req.ToDomain(eventID))
	if err != nil {
		renderEventErr(ctx, "v1.HandleCreateQuestion -> h.svc.CreateQuestion", err)
		return
	}

	response.Render(ctx, http.StatusCreated, question)
}

func (h *EventHandler) HandleUpdateQuestion(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "eventQuestionId")
	if !ok {
		return
	}

	var req request.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	question := req.ToDomain(eventID)
	question.ID = questionID
	updated, err := h.svc.UpdateQuestion(ctx.Request.Context(), question)
	if err != nil {
		renderEventErr(ctx, "v1.HandleUpdateQuestion -> h.svc.UpdateQuestion", err)
		return
	}

	response.Render(ctx, http.StatusOK, updated)
}

func (h *EventHandler) HandleDeleteQuestion(ctx *gin.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(ctx, "eventQuestionId")
	if !ok {
		return
	}

	if err := h.svc.DeleteQuestion(ctx.Request.Context(), eventID, questionID); err != nil {
		renderEventErr(ctx, "v1.HandleDeleteQuestion -> h.svc.DeleteQuestion", err)
		return
	}

	response.RenderMessage(ctx, http.StatusOK, "question deleted")
}
