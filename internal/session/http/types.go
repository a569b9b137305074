package http

import (
	"github.com/telecare-health/telecare-backend/internal/identity"
	"github.com/telecare-health/telecare-backend/internal/session"
)

// Handler handles HTTP requests for the session lifecycle
type Handler struct {
	sessions *session.Store
	google   *identity.GoogleSignIn // nil when Google sign-in is not configured
}

// New creates a new Handler
func New(sessions *session.Store, google *identity.GoogleSignIn) *Handler {
	return &Handler{sessions: sessions, google: google}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role" binding:"required"`
}
