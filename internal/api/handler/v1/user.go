package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/request"
	"github.com/eventreg/regclient/internal/api/handler/v1/response"
	"github.com/eventreg/regclient/internal/api/middleware"
	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	ListUsers(ctx context.Context, page, limit int, search string) (domain.Page[domain.User], error)
	CreateUser(ctx context.Context, user domain.User, password string) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User, password string) (domain.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, phoneNo string) (domain.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	DeleteUser(ctx context.Context, id int64) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

func (h *UserHandler) HandleGetProfile(ctx *gin.Context) {
	userID, _ := middleware.UserID(ctx)

	user, err := h.svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		h.renderErr(ctx, "v1.HandleGetProfile -> h.svc.GetUser", userID, err)
		return
	}

	response.Render(ctx, http.StatusOK, user)
}

func (h *UserHandler) HandleUpdateProfile(ctx *gin.Context) {
	var req request.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	userID, _ := middleware.UserID(ctx)
	user, err := h.svc.UpdateProfile(ctx.Request.Context(), userID, req.FirstName, req.LastName, req.PhoneNo)
	if err != nil {
		h.renderErr(ctx, "v1.HandleUpdateProfile -> h.svc.UpdateProfile", userID, err)
		return
	}

	response.Render(ctx, http.StatusOK, user)
}

func (h *UserHandler) HandleChangePassword(ctx *gin.Context) {
	var req request.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	userID, _ := middleware.UserID(ctx)
	err := h.svc.ChangePassword(ctx.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, backend.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("current password is incorrect")))
			return
		}
		h.renderErr(ctx, "v1.HandleChangePassword -> h.svc.ChangePassword", userID, err)
		return
	}

	response.RenderMessage(ctx, http.StatusOK, "password changed")
}

func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	page, err := h.svc.ListUsers(ctx.Request.Context(), queryInt(ctx, "page", 1), queryInt(ctx, "limit", 0), ctx.Query("search"))
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusOK, page)
}

// HandleGetUser is open to admins and to the user themselves.
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "userID")
	if !ok {
		return
	}

	callerID, _ := middleware.UserID(ctx)
	if callerID != id && !middleware.IsAdmin(ctx) {
		response.RenderErr(ctx, response.ErrPermissionDenied(errors.New("not your account")))
		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), id)
	if err != nil {
		h.renderErr(ctx, "v1.HandleGetUser -> h.svc.GetUser", id, err)
		return
	}

	response.Render(ctx, http.StatusOK, user)
}

func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.UserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(true); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.CreateUser(ctx.Request.Context(), req.ToDomain(), req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(backend.ErrUserEmailExists))
			return
		}
		err = fmt.Errorf("v1.HandleCreateUser -> h.svc.CreateUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	response.Render(ctx, http.StatusCreated, user)
}

func (h *UserHandler) HandleUpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "userID")
	if !ok {
		return
	}

	var req request.UserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(false); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user := req.ToDomain()
	user.ID = id
	updated, err := h.svc.UpdateUser(ctx.Request.Context(), user, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(backend.ErrUserEmailExists))
			return
		}
		h.renderErr(ctx, "v1.HandleUpdateUser -> h.svc.UpdateUser", id, err)
		return
	}

	response.Render(ctx, http.StatusOK, updated)
}

func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "userID")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(ctx.Request.Context(), id); err != nil {
		h.renderErr(ctx, "v1.HandleDeleteUser -> h.svc.DeleteUser", id, err)
		return
	}

	response.RenderMessage(ctx, http.StatusOK, "user deleted")
}

func (h *UserHandler) renderErr(ctx *gin.Context, op string, id int64, err error) {
	if errors.Is(err, backend.ErrUserNotFound) {
		response.RenderErr(ctx, response.ErrNotFound("user", "ID", id))
		return
	}

	response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err)))
}
