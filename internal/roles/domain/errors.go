package domain

import "errors"

var (
	// ErrRoleConflict is returned when Assign is called with a different
	// role than the one already stored. Assignments are write-once.
	ErrRoleConflict = errors.New("role already assigned with a different value")
	ErrInvalidRole  = errors.New("invalid role")
)
