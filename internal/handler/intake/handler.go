// Package intake receives chat-bot webhook registrations.
package intake

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menahealth/medflow-api/internal/handler"
	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/service/patient"
)

type Handler struct {
	patients *patient.Service
}

func NewHandler(patients *patient.Service) *Handler {
	return &Handler{patients: patients}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/intake/telegram", h.TelegramIntake)
}

func (h *Handler) TelegramIntake(c *gin.Context) {
	var req model.TelegramIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.patients.TelegramIntake(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}
