package navigation

import (
	"strings"

	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
	"github.com/telecare-health/telecare-backend/internal/session"
)

// Decision is the route guard's verdict for a requested navigation.
type Decision string

const (
	Allow                  Decision = "allow"
	RedirectToLogin        Decision = "redirect_to_login"
	RedirectToUnauthorized Decision = "redirect_to_unauthorized"
	RedirectToDashboard    Decision = "redirect_to_dashboard"
	// Pending means the session is still loading; render nothing
	// committal and do not redirect yet.
	Pending Decision = "pending"
)

// patientNamespace is the path prefix doctors are fenced out of: the
// shopping/booking flows are patient-facing regardless of what the
// destination's own role list says.
const patientNamespace = "/doctors"

// Route declares a destination's access requirements. An empty
// AllowedRoles list means any session that passes the earlier rules may
// enter.
type Route struct {
	Path         string
	RequiresAuth bool
	AllowedRoles []rolesdomain.Role
}

// Evaluate gates a navigation to route given the current session state.
// Rules are applied in order; the doctor fence takes precedence over the
// allow-list check.
func Evaluate(state session.State, sess *session.UserSession, route Route) Decision {
	if state == session.StateLoading || state == session.StateAuthenticating {
		return Pending
	}

	if state != session.StateAuthenticated || sess == nil {
		if route.RequiresAuth {
			return RedirectToLogin
		}
		return Allow
	}

	if sess.Role == rolesdomain.RoleDoctor && strings.HasPrefix(route.Path, patientNamespace) {
		return RedirectToDashboard
	}

	if len(route.AllowedRoles) > 0 && !containsRole(route.AllowedRoles, sess.Role) {
		return RedirectToUnauthorized
	}

	return Allow
}

func containsRole(roles []rolesdomain.Role, role rolesdomain.Role) bool {
	// RoleUnknown is never a member of an allow-list, even if one was
	// misconfigured to include it.
	if role == rolesdomain.RoleUnknown {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
