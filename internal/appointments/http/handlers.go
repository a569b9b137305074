package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// Book creates an appointment for the authenticated patient. A remote
// store failure does not fail the booking: the record is committed
// locally and the response carries a warning instead.
func (h *Handler) Book(c *gin.Context) {
	subjectID := c.GetString("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body bookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec := domain.AppointmentRecord{
		PatientID:       subjectID,
		PatientName:     c.GetString("display_name"),
		DoctorID:        body.DoctorID,
		DoctorName:      body.DoctorName,
		DoctorSpecialty: body.DoctorSpecialty,
		DoctorImage:     body.DoctorImage,
		Date:            body.Date,
		Time:            body.Time,
		Type:            body.Type,
		Reason:          body.Reason,
	}

	result, err := h.cache.Write(c.Request.Context(), c.GetString("raw_token"), rec)
	if err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to book appointment"})
		return
	}

	resp := gin.H{"appointment": result.Record}
	if result.RemoteID != "" {
		resp["remote_id"] = result.RemoteID
	}
	if result.Warning != nil {
		resp["warning"] = "appointment saved locally but remote store is unavailable: " + result.Warning.Error()
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns the subject's appointment list, local slot first.
func (h *Handler) List(c *gin.Context) {
	subjectID := c.GetString("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	// The subject's own durable role decides what the remote store is
	// asked for; an unresolved role is treated as a patient view.
	role := rolesdomain.RolePatient
	if resolved, err := h.roles.Resolve(c.Request.Context(), subjectID); err == nil && resolved != rolesdomain.RoleUnknown {
		role = resolved
	}

	result, err := h.cache.List(c.Request.Context(), c.GetString("raw_token"), string(role), subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list appointments"})
		return
	}

	resp := gin.H{"appointments": result.Records}
	if result.Warning != nil {
		resp["warning"] = "remote store unavailable, showing local records only"
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus transitions an appointment's status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	subjectID := c.GetString("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.cache.UpdateStatus(c.Request.Context(), c.GetString("raw_token"), subjectID, c.Param("id"), body.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
		case errors.Is(err, domain.ErrInvalidStatus):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update appointment"})
		}
		return
	}

	resp := gin.H{"appointment": result.Record}
	if result.Warning != nil {
		resp["warning"] = "status updated locally but remote store is unavailable"
	}
	c.JSON(http.StatusOK, resp)
}

// Invalidate drops the subject's local slot; the next list refetches.
func (h *Handler) Invalidate(c *gin.Context) {
	subjectID := c.GetString("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.cache.Invalidate(c.Request.Context(), subjectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invalidate local records"})
		return
	}

	c.Status(http.StatusNoContent)
}
