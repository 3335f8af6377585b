// Package patient exposes the staff-facing case endpoints: demographics
// CRUD, workflow transitions and order issuance.
package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/menahealth/medflow-api/internal/handler"
	"github.com/menahealth/medflow-api/internal/middleware"
	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/service/lifecycle"
	"github.com/menahealth/medflow-api/internal/service/order"
	"github.com/menahealth/medflow-api/internal/service/patient"
)

type Handler struct {
	patients  *patient.Service
	lifecycle *lifecycle.Service
	orders    *order.Service
}

func NewHandler(patients *patient.Service, lifecycleSvc *lifecycle.Service, orders *order.Service) *Handler {
	return &Handler{
		patients:  patients,
		lifecycle: lifecycleSvc,
		orders:    orders,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PATCH("/:id", h.UpdatePatient)

		patients.POST("/:id/status", h.SetStatus)
		patients.POST("/:id/specialty", h.SetSpecialty)
		patients.POST("/:id/claim", h.ClaimCase)
		patients.POST("/:id/archive", h.ArchivePatient)

		patients.POST("/:id/med-orders", h.CreateMedOrder)
		patients.GET("/:id/med-orders", h.ListMedOrders)
		patients.POST("/:id/rx-orders", h.CreateRxOrder)
		patients.GET("/:id/rx-orders", h.ListRxOrders)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.patients.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patients, err := h.patients.List(c.Request.Context(), &filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.patients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.patients.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

type setStatusRequest struct {
	Status model.PatientStatus `json:"status" binding:"required"`
}

func (h *Handler) SetStatus(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing caller identity"))
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.lifecycle.Transition(c.Request.Context(), caller, c.Param("id"), req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

type setSpecialtyRequest struct {
	Specialty model.Specialty `json:"specialty" binding:"required"`
}

// specialtyEnvelope carries the doctor-match count alongside the patient
// so the dashboard can tell "queued" from "no doctors available".
type specialtyEnvelope struct {
	Patient            *model.Patient `json:"patient"`
	MatchedDoctors     int            `json:"matched_doctors"`
	NotificationQueued bool           `json:"notification_queued"`
}

func (h *Handler) SetSpecialty(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing caller identity"))
		return
	}

	var req setSpecialtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.lifecycle.AssignSpecialty(c.Request.Context(), caller, c.Param("id"), req.Specialty)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(specialtyEnvelope{
		Patient:            result.Patient,
		MatchedDoctors:     result.MatchedDoctors,
		NotificationQueued: result.NotificationQueued,
	}))
}

func (h *Handler) ClaimCase(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing caller identity"))
		return
	}

	p, err := h.lifecycle.ClaimCase(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) ArchivePatient(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing caller identity"))
		return
	}

	p, err := h.lifecycle.Archive(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) CreateMedOrder(c *gin.Context) {
	var req model.CreateMedOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	o, err := h.orders.CreateMedOrder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(o))
}

func (h *Handler) ListMedOrders(c *gin.Context) {
	orders, err := h.orders.ListMedOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}

func (h *Handler) CreateRxOrder(c *gin.Context) {
	var req model.CreateRxOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	o, err := h.orders.CreateRxOrder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(o))
}

func (h *Handler) ListRxOrders(c *gin.Context) {
	orders, err := h.orders.ListRxOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}
