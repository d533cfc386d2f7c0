package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-assist/internal/domain"
)

// ErrorResponse is the body of every non-2xx chat reply.
// Detail repeats Message for clients that only read the detail field.
type ErrorResponse struct {
	Status  domain.Status `json:"status"`
	Role    domain.Role   `json:"role"`
	Message string        `json:"message"`
	Detail  string        `json:"detail"`
}

// StatusForKind maps an error kind onto the HTTP status returned to callers.
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindAuthentication, domain.KindUpstream, domain.KindMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeResult renders res as 200 on success, or as an ErrorResponse with the mapped status.
func writeResult(c *gin.Context, res domain.Result) {
	if res.OK() {
		c.JSON(http.StatusOK, res)
		return
	}
	writeError(c, StatusForKind(res.Kind), res.Message)
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Status:  domain.StatusError,
		Role:    domain.RoleSystem,
		Message: message,
		Detail:  message,
	})
}
