package httpapi

import (
	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

// respondMessage writes {"message": msg}, the envelope of the auth and
// eBook routes.
func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// respondError writes {"error": msg}, the envelope of the forms routes.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// logFailure records an unexpected error with the request id. The client
// only ever sees a generic message.
func (s *HTTPServer) logFailure(c *gin.Context, op string, err error) {
	s.logger.Error(c.Request.Context(), op+" failed", "request_id", c.GetString(requestIDKey), "error", err)
}
