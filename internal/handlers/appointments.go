package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dentix/api/internal/ids"
	"dentix/api/internal/middleware"
	"dentix/api/internal/models"
	"dentix/api/internal/repository"
)

type createAppointmentRequest struct {
	ChildName     string    `json:"childName" binding:"required,max=100"`
	ChildAge      int       `json:"childAge" binding:"min=0,max=18"`
	ParentName    string    `json:"parentName" binding:"required,max=100"`
	Phone         string    `json:"phone" binding:"required,max=15"`
	Service       string    `json:"service" binding:"required,max=50"`
	PreferredDate time.Time `json:"preferredDate" binding:"required"`
	Notes         *string   `json:"notes" binding:"omitempty,max=500"`
}

type appointmentResponse struct {
	ID            string    `json:"id"`
	ChildName     string    `json:"childName"`
	ChildAge      int       `json:"childAge"`
	ParentName    string    `json:"parentName"`
	Phone         string    `json:"phone"`
	Service       string    `json:"service"`
	PreferredDate time.Time `json:"preferredDate"`
	Notes         *string   `json:"notes,omitempty"`
	IsConfirmed   bool      `json:"isConfirmed"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toAppointmentResponse(appt models.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:            appt.ID,
		ChildName:     appt.ChildName,
		ChildAge:      appt.ChildAge,
		ParentName:    appt.ParentName,
		Phone:         appt.Phone,
		Service:       appt.Service,
		PreferredDate: appt.PreferredDate,
		Notes:         appt.Notes,
		IsConfirmed:   appt.IsConfirmed,
		CreatedAt:     appt.CreatedAt,
	}
}

func (h HandlerSet) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	today := time.Now().Truncate(24 * time.Hour)
	if req.PreferredDate.Before(today) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preferred_date_in_past"})
		return
	}

	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	appt := models.Appointment{
		ID:            ids.New(),
		UserID:        claims.Subject,
		ChildName:     req.ChildName,
		ChildAge:      req.ChildAge,
		ParentName:    req.ParentName,
		Phone:         req.Phone,
		Service:       req.Service,
		PreferredDate: req.PreferredDate,
		Notes:         req.Notes,
	}

	if err := h.appointments.Create(c.Request.Context(), appt); err != nil {
		h.log.Error().Err(err).Msg("create appointment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "appointment request submitted",
		"appointment": toAppointmentResponse(appt),
	})
}

func (h HandlerSet) ListAppointments(c *gin.Context) {
	appts, err := h.appointments.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list appointments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]appointmentResponse, 0, len(appts))
	for _, appt := range appts {
		resp = append(resp, toAppointmentResponse(appt))
	}
	c.JSON(http.StatusOK, gin.H{"appointments": resp})
}

func (h HandlerSet) MyAppointments(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	appts, err := h.appointments.ListByUser(c.Request.Context(), claims.Subject)
	if err != nil {
		h.log.Error().Err(err).Msg("list own appointments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]appointmentResponse, 0, len(appts))
	for _, appt := range appts {
		resp = append(resp, toAppointmentResponse(appt))
	}
	c.JSON(http.StatusOK, gin.H{"appointments": resp})
}

func (h HandlerSet) ConfirmAppointment(c *gin.Context) {
	id := c.Param("id")

	if err := h.appointments.Confirm(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment_not_found"})
			return
		}
		h.log.Error().Err(err).Str("appointment_id", id).Msg("confirm appointment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "confirm_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment confirmed"})
}

func (h HandlerSet) CancelAppointment(c *gin.Context) {
	id := c.Param("id")

	if err := h.appointments.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment_not_found"})
			return
		}
		h.log.Error().Err(err).Str("appointment_id", id).Msg("cancel appointment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment cancelled"})
}
