package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventreg/regclient/internal/api/handler/v1/response"
)

// pathID parses the numeric path parameter name. It renders a 400 and
// returns false when the value is not a positive integer.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RenderErr(ctx, response.ErrInvalidID(name))
		return 0, false
	}

	return id, true
}

func queryInt(ctx *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(ctx.Query(name))
	if err != nil {
		return fallback
	}

	return v
}
