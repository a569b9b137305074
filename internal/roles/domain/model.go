package domain

// Role classifies a subject's domain-level capabilities.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
	// RoleUnknown is the value before resolution completes, or when no
	// assignment exists. The route guard treats it as "no access" for
	// any role-gated destination.
	RoleUnknown Role = "unknown"
)

// Valid reports whether r is an assignable role. RoleUnknown is never
// assignable; it only ever results from a missing assignment.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

// Assignment is the durable subject -> role association. It is the only
// authoritative source of role; the identity provider carries no role claims.
type Assignment struct {
	SubjectID string `json:"subject_id" db:"subject_id"`
	Role      Role   `json:"role" db:"role"`
}
