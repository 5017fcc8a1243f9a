package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waypost/backend/internal/moderation"
)

// ErrorResponse sends a standardized error response and logs at caller if needed
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// BlockedResponse rejects a mutation that failed the moderation gate. The
// message is user-facing; details carry confidence, threshold and labels.
func BlockedResponse(c *gin.Context, block *moderation.BlockResponse) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":   block.Message,
		"details": block.Details,
	})
}
