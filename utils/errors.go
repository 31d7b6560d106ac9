package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON envelope for every failed request
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

func RespondWithNotFound(c *gin.Context, errorCode, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message, nil)
}

func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithBadGateway reports a failure of an upstream service
func RespondWithBadGateway(c *gin.Context, errorCode, message string, details interface{}) {
	RespondWithError(c, http.StatusBadGateway, errorCode, message, details)
}

// RespondWithGatewayTimeout reports that an upstream result was not ready in time
func RespondWithGatewayTimeout(c *gin.Context, errorCode, message string) {
	RespondWithError(c, http.StatusGatewayTimeout, errorCode, message, nil)
}
