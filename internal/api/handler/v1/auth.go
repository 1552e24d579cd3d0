package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/request"
	"github.com/eventreg/regclient/internal/api/handler/v1/response"
	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/pkg/jwthelper"
	"github.com/eventreg/regclient/internal/repository"
)

const (
	refreshCookieName = "refreshToken"
	refreshCookiePath = "/api/auth"
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	IssueRefreshToken(ctx context.Context, userID int64) (repository.RefreshToken, error)
	Refresh(ctx context.Context, token string) (domain.User, repository.RefreshToken, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PhoneNo:   req.PhoneNo,
	}, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(backend.ErrUserEmailExists))
			return
		}
		err = fmt.Errorf("v1.HandleSignup -> h.svc.Signup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.renderSession(ctx, http.StatusCreated, user)
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrUserNotFound) || errors.Is(err, backend.ErrWrongPassword) {
			response.RenderErr(ctx, response.ErrWrongCredentials(err))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	h.renderSession(ctx, http.StatusOK, user)
}

// HandleRefreshToken trades the refresh cookie for a new access token and
// rotates the cookie.
func (h *AuthHandler) HandleRefreshToken(ctx *gin.Context) {
	token, _ := ctx.Cookie(refreshCookieName)

	user, next, err := h.svc.Refresh(ctx.Request.Context(), token)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidRefreshToken) {
			h.clearRefreshCookie(ctx)
			response.RenderErr(ctx, response.ErrUnauthorized(backend.ErrInvalidRefreshToken))
			return
		}
		err = fmt.Errorf("v1.HandleRefreshToken -> h.svc.Refresh -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	accessToken, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user, h.conf.AccessTokenTTL, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleRefreshToken -> jwthelper.GenerateToken() -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.setRefreshCookie(ctx, next)
	response.Render(ctx, http.StatusOK, response.TokenResponse{AccessToken: accessToken})
}

func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	token, _ := ctx.Cookie(refreshCookieName)

	if err := h.svc.Logout(ctx.Request.Context(), token); err != nil {
		err = fmt.Errorf("v1.HandleLogout -> h.svc.Logout -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.clearRefreshCookie(ctx)
	response.RenderMessage(ctx, http.StatusOK, "logged out")
}

func (h *AuthHandler) renderSession(ctx *gin.Context, status int, user domain.User) {
	accessToken, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user, h.conf.AccessTokenTTL, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.renderSession -> jwthelper.GenerateToken() -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	refresh, err := h.svc.IssueRefreshToken(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.renderSession -> h.svc.IssueRefreshToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	h.setRefreshCookie(ctx, refresh)
	response.Render(ctx, status, domain.AuthData{
		User:        user,
		AccessToken: accessToken,
	})
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, rt repository.RefreshToken) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(refreshCookieName, rt.Token, int(h.conf.RefreshTokenTTL.Seconds()), refreshCookiePath, "", h.secureCookies(), true)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookies(), true)
}

func (h *AuthHandler) secureCookies() bool {
	return h.conf.Environment == "production"
}
