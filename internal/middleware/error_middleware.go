package middleware

import (
	"chat-messages/internal/services"
	"chat-messages/internal/transport/httpdto"
	"chat-messages/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs errors attached with c.Error and answers for handlers
// that returned without writing a response.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := services.HTTPStatus(err)
		if l != nil && status >= 500 {
			l.ErrorCtx(c.Request.Context(), "request error", zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, httpdto.NewErrorResponse(PublicMessage(status, err), httpdto.CodeForStatus(status)))
	}
}

// PublicMessage hides internal error text from clients.
func PublicMessage(status int, err error) string {
	switch {
	case status == 503:
		return "service unavailable"
	case status >= 500:
		return "internal error"
	}
	return err.Error()
}
