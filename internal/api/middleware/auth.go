package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/response"
	"github.com/eventreg/regclient/internal/domain"
	"github.com/eventreg/regclient/internal/pkg/jwthelper"
)

const (
	ContextKeyUserID = "userID"
	ContextKeyRole   = "role"
)

var (
	errMissingToken = errors.New("missing access token")
	errNotAdmin     = errors.New("admin role required")
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		if err := a.authenticate(ctx, token); err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Next()
	}
}

// OptionalJWT lets anonymous requests through but rejects a bad token, so
// the caller gets a chance to refresh it.
func (a *Authenticator) OptionalJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.Next()
			return
		}

		if err := a.authenticate(ctx, token); err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Next()
	}
}

// RequireAdmin must run after VerifyJWT.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role, _ := ctx.Get(ContextKeyRole)
		if role != domain.RoleAdmin {
			response.RenderErr(ctx, response.ErrPermissionDenied(errNotAdmin))
			return
		}

		ctx.Next()
	}
}

// UserID returns the id of the authenticated caller, if any.
func UserID(ctx *gin.Context) (int64, bool) {
	v, ok := ctx.Get(ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func IsAdmin(ctx *gin.Context) bool {
	role, _ := ctx.Get(ContextKeyRole)
	return role == domain.RoleAdmin
}

func (a *Authenticator) authenticate(ctx *gin.Context, token string) error {
	claims, err := jwthelper.ParseToken(a.signingKey, token)
	if err != nil {
		return fmt.Errorf("jwthelper.ParseToken -> %w", err)
	}

	ctx.Set(ContextKeyUserID, claims.UserID)
	ctx.Set(ContextKeyRole, claims.Role)

	return nil
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
