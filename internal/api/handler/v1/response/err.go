package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

// Err is the body of every failed response.
type Err struct {
	HTTPStatusCode int               `json:"-"`
	Err            error             `json:"-"`
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	Errors         map[string]string `json:"errors,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("internal server error",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	e := &Err{
		HTTPStatusCode: http.StatusBadRequest,
		Err:            err,
		Message:        err.Error(),
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		e.Message = "invalid request"
		e.Errors = make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			e.Errors[field] = fieldErr.Error()
		}
	}

	return e
}

func ErrInvalidID(name string) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		Message:        fmt.Sprintf("invalid %s", name),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		Message:        fmt.Sprintf("%s with %s %v not found", resource, key, value),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Err:            err,
		Message:        err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Err:            err,
		Message:        "wrong email or password",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusForbidden,
		Err:            err,
		Message:        "permission denied",
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusConflict,
		Err:            err,
		Message:        err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		Err:            err,
		Message:        "internal server error",
	}
}
