package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable error codes surfaced to interactive callers.
const (
	CodeInvalidArgument    = "invalid-argument"
	CodeFailedPrecondition = "failed-precondition"
	CodeInternal           = "internal"
)

var codeStatus = map[string]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeFailedPrecondition: http.StatusPreconditionFailed,
	CodeInternal:           http.StatusInternalServerError,
}

// rpcError writes a classified error with a stable code and human-readable
// message.
func rpcError(c *gin.Context, code, message string) {
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": message, "code": code})
}
