package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	identitydomain "github.com/telecare-health/telecare-backend/internal/identity/domain"
	"github.com/telecare-health/telecare-backend/internal/navigation"
	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// SignIn authenticates against the identity provider. Provider failures
// come back to the caller; the session state is untouched by them.
func (h *Handler) SignIn(c *gin.Context) {
	var body signInRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.sessions.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, identitydomain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// SignUp creates an account with a chosen role. The role is assigned
// before the session is declared authenticated, so the response (and the
// first protected render) already carries it.
func (h *Handler) SignUp(c *gin.Context) {
	var body signUpRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	role := rolesdomain.Role(body.Role)
	if role != rolesdomain.RolePatient && role != rolesdomain.RoleDoctor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be patient or doctor"})
		return
	}

	sess, err := h.sessions.SignUp(c.Request.Context(), body.Email, body.Password, body.DisplayName, role)
	if err != nil {
		switch {
		case errors.Is(err, identitydomain.ErrEmailAlreadyInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		case errors.Is(err, rolesdomain.ErrRoleConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "subject already has a different role"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

// SignOut destroys the live session.
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GoogleAuthURL returns the provider consent URL the SPA redirects to.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.google.AuthURL(state)})
}

// GoogleCallback completes the OAuth code exchange. A subject signing in
// with Google for the first time becomes a patient.
func (h *Handler) GoogleCallback(c *gin.Context) {
	var body googleCallbackRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.sessions.SignInWithGoogle(c.Request.Context(), func(ctx context.Context) (*identitydomain.Credential, error) {
		return h.google.Exchange(ctx, body.Code)
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// Me returns the current session state.
func (h *Handler) Me(c *gin.Context) {
	state := h.sessions.State()
	resp := gin.H{"state": state}
	if sess := h.sessions.Session(); sess != nil {
		resp["session"] = sess
	}
	c.JSON(http.StatusOK, resp)
}

// Decide is the route-guard probe used by the SPA shell: given a
// destination path it answers how navigation should proceed for the
// current session.
func (h *Handler) Decide(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	route := navigation.Lookup(path)
	decision := navigation.Evaluate(h.sessions.State(), h.sessions.Session(), route)

	c.JSON(http.StatusOK, gin.H{
		"path":     path,
		"decision": decision,
	})
}
