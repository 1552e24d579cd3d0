package response

import (
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Render writes data inside the success envelope.
func Render(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, envelope{Success: true, Data: data})
}

func RenderMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, envelope{Success: true, Message: message})
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}
