package service

import (
	"context"

	"github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// AssignmentStore is the durable key-value store behind the resolver.
type AssignmentStore interface {
	Get(ctx context.Context, subjectID string) (*domain.Assignment, error)
	Insert(ctx context.Context, subjectID string, role domain.Role) (inserted bool, err error)
}

// Resolver maps a subject ID to its domain role. The identity provider in
// use carries no authoritative role claims, so the stored assignment is
// the only source of truth here.
type Resolver struct {
	store AssignmentStore
}

func NewResolver(store AssignmentStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up the durable assignment for a subject. A subject with
// no assignment resolves to RoleUnknown without error.
func (r *Resolver) Resolve(ctx context.Context, subjectID string) (domain.Role, error) {
	a, err := r.store.Get(ctx, subjectID)
	if err != nil {
		return domain.RoleUnknown, err
	}
	if a == nil {
		return domain.RoleUnknown, nil
	}
	return a.Role, nil
}

// Assign persists a write-once role for a subject. Repeating the same
// role is a no-op; a different role on an existing assignment is a
// programmer error and is rejected with ErrRoleConflict.
func (r *Resolver) Assign(ctx context.Context, subjectID string, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	inserted, err := r.store.Insert(ctx, subjectID, role)
	if err != nil {
		return err
	}
	if inserted {
		return nil
	}

	// Lost the insert: an assignment already exists. Idempotent only if
	// it carries the same role.
	existing, err := r.store.Get(ctx, subjectID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Role == role {
		return nil
	}
	return domain.ErrRoleConflict
}
