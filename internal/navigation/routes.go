package navigation

import (
	"strings"

	rolesdomain "github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// Table is the portal's route declarations, mirroring the SPA shell.
// Longest-prefix wins on lookup so /appointments/book picks up the
// /appointments declaration.
var Table = []Route{
	{Path: "/"},
	{Path: "/login"},
	{Path: "/signup"},
	{Path: "/forgot-password"},
	{Path: "/unauthorized"},
	{Path: "/features"},

	{Path: "/dashboard", RequiresAuth: true},
	{Path: "/settings", RequiresAuth: true},
	{Path: "/documents", RequiresAuth: true},
	{Path: "/consultations", RequiresAuth: true},
	{Path: "/consultation-room", RequiresAuth: true},
	{Path: "/prescriptions", RequiresAuth: true},
	{Path: "/medical-chat", RequiresAuth: true},

	{Path: "/doctors", RequiresAuth: true, AllowedRoles: []rolesdomain.Role{rolesdomain.RolePatient}},
	{Path: "/appointments", RequiresAuth: true, AllowedRoles: []rolesdomain.Role{rolesdomain.RolePatient}},

	{Path: "/prescription/new", RequiresAuth: true, AllowedRoles: []rolesdomain.Role{rolesdomain.RoleDoctor, rolesdomain.RoleAdmin}},
	{Path: "/patients", RequiresAuth: true, AllowedRoles: []rolesdomain.Role{rolesdomain.RoleDoctor, rolesdomain.RoleAdmin}},
	{Path: "/doctor/appointments", RequiresAuth: true, AllowedRoles: []rolesdomain.Role{rolesdomain.RoleDoctor, rolesdomain.RoleAdmin}},

	{Path: "/admin", RequiresAuth: true, AllowedRoles: []rolesdomain.Role{rolesdomain.RoleAdmin}},
}

// Lookup finds the declared route matching path, longest prefix first.
// Unknown paths fall back to an unrestricted route for that path.
func Lookup(path string) Route {
	var best Route
	bestLen := -1
	for _, r := range Table {
		if r.Path == path {
			return withPath(r, path)
		}
		if strings.HasPrefix(path, r.Path+"/") && len(r.Path) > bestLen {
			best = r
			bestLen = len(r.Path)
		}
	}
	if bestLen >= 0 {
		return withPath(best, path)
	}
	return Route{Path: path}
}

// withPath keeps the requested path on the matched declaration so the
// doctor fence sees the real destination, not the table prefix.
func withPath(r Route, path string) Route {
	r.Path = path
	return r
}
