package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/telecare-health/telecare-backend/internal/roles/domain"
)

// AssignmentRepository persists role assignments in Postgres.
type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Get retrieves the stored assignment for a subject. A missing row is not
// an error; it returns (nil, nil).
func (r *AssignmentRepository) Get(ctx context.Context, subjectID string) (*domain.Assignment, error) {
	query := `
		SELECT subject_id, role
		FROM role_assignments
		WHERE subject_id = $1
	`

	var a domain.Assignment
	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&a.SubjectID, &a.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get role assignment: %w", err)
	}

	return &a, nil
}

// Insert stores an assignment if none exists yet. The write is race-safe:
// ON CONFLICT DO NOTHING means a concurrent first writer wins and this
// call reports inserted=false, after which the caller compares roles.
func (r *AssignmentRepository) Insert(ctx context.Context, subjectID string, role domain.Role) (inserted bool, err error) {
	query := `
		INSERT INTO role_assignments (subject_id, role, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (subject_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, subjectID, string(role))
	if err != nil {
		return false, fmt.Errorf("insert role assignment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert role assignment: %w", err)
	}

	return rows > 0, nil
}
