package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menahealth/medflow-api/internal/handler"
)

const HeaderWebhookSecret = "X-Webhook-Secret"

// WebhookAuth guards machine-to-machine intake endpoints with a shared
// secret header.
func WebhookAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderWebhookSecret)
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid webhook secret"))
			c.Abort()
			return
		}
		c.Next()
	}
}
