package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func webhookRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WebhookAuth(secret))
	r.POST("/intake", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestWebhookAuth(t *testing.T) {
	r := webhookRouter("s3cret")

	t.Run("accepts matching secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/intake", nil)
		req.Header.Set(HeaderWebhookSecret, "s3cret")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/intake", nil)
		req.Header.Set(HeaderWebhookSecret, "guess")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/intake", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestWebhookAuthEmptySecretAlwaysRejects(t *testing.T) {
	// An unset secret must fail closed, not open.
	r := webhookRouter("")

	req := httptest.NewRequest(http.MethodPost, "/intake", nil)
	req.Header.Set(HeaderWebhookSecret, "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
