package http

import (
	"context"

	"github.com/telecare-health/telecare-backend/internal/appointments/service"
	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// RoleResolver resolves the verified subject's durable role.
type RoleResolver interface {
	Resolve(ctx context.Context, subjectID string) (rolesdomain.Role, error)
}

// Handler handles HTTP requests for appointment records. Per-request user
// identity comes from the verified token, never from shared state.
type Handler struct {
	cache *service.SyncCache
	roles RoleResolver
}

// New creates a new Handler
func New(cache *service.SyncCache, roles RoleResolver) *Handler {
	return &Handler{
		cache: cache,
		roles: roles,
	}
}

type bookRequest struct {
	DoctorID        string `json:"doctor_id" binding:"required"`
	DoctorName      string `json:"doctor_name"`
	DoctorSpecialty string `json:"doctor_specialty"`
	DoctorImage     string `json:"doctor_image"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	Type            string `json:"type" binding:"required"`
	Reason          string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}
