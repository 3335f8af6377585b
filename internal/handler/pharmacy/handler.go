// Package pharmacy exposes the unauthenticated rx-order endpoints reached
// through the tokenized links and QR codes.
package pharmacy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menahealth/medflow-api/internal/handler"
	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/service/order"
)

type Handler struct {
	orders *order.Service
}

func NewHandler(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rx := r.Group("/rx-orders")
	{
		rx.GET("/:token", h.GetRxOrder)
		rx.PATCH("/:token", h.FulfillRxOrder)
	}
}

func (h *Handler) GetRxOrder(c *gin.Context) {
	o, err := h.orders.GetRxOrderByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(o))
}

func (h *Handler) FulfillRxOrder(c *gin.Context) {
	var req model.FulfillRxOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	o, err := h.orders.FulfillRxOrder(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(o))
}
