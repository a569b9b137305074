package session

import (
	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// State is the session lifecycle state.
type State string

const (
	// StateLoading holds until the identity provider has reported the
	// initial credential state. Nothing is rendered committal here.
	StateLoading State = "loading"
	// StateAnonymous means no live credential exists.
	StateAnonymous State = "anonymous"
	// StateAuthenticating means a credential exists but its role is
	// still being resolved. The store never rests in this state.
	StateAuthenticating State = "authenticating"
	// StateAuthenticated means a full UserSession is live.
	StateAuthenticated State = "authenticated"
)

// UserSession is the composed identity + role value published to the rest
// of the application. Profile fields come from the identity provider and
// are not authoritative for authorization; Role is.
type UserSession struct {
	SubjectID   string           `json:"subject_id"`
	Email       string           `json:"email"`
	DisplayName *string          `json:"display_name,omitempty"`
	AvatarURL   *string          `json:"avatar_url,omitempty"`
	Role        rolesdomain.Role `json:"role"`
}
