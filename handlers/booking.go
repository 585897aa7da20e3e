package handlers

import (
	"net/http"

	"taskhive/models"
	"taskhive/services/booking"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	bookings, err := h.Svc.List(c.Request.Context(), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	b, err := h.Svc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		Status models.BookingStatus `json:"status"`
	}
	if !bindJSON(c, &body) {
		return
	}
	b, err := h.Svc.UpdateStatus(c.Request.Context(), actor, c.Param("id"), body.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) UpdatePaymentStatusHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}
	if !bindJSON(c, &body) {
		return
	}
	b, err := h.Svc.UpdatePaymentStatus(c.Request.Context(), actor, c.Param("id"), body.PaymentStatus)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
