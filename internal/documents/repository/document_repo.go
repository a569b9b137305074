package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/telecare-health/telecare-backend/internal/documents/domain"
)

// DocumentRepository persists document metadata in Postgres.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document row.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, owner_id, name, file_name, file_type, file_size, category, object_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Name,
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		doc.Category,
		doc.ObjectKey,
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

// GetByID retrieves a document owned by ownerID.
func (r *DocumentRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	query := `
		SELECT id, owner_id, name, file_name, file_type, file_size, category, object_key, uploaded_at
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`

	var doc domain.Document
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Name,
		&doc.FileName,
		&doc.FileType,
		&doc.FileSize,
		&doc.Category,
		&doc.ObjectKey,
		&doc.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// ListByOwner retrieves documents for an owner, optionally filtered by category.
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID, category string) ([]domain.Document, error) {
	query := `
		SELECT id, owner_id, name, file_name, file_type, file_size, category, object_key, uploaded_at
		FROM documents
		WHERE owner_id = $1
	`
	args := []interface{}{ownerID}

	if category != "" && category != "all" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.Name,
			&doc.FileName,
			&doc.FileType,
			&doc.FileSize,
			&doc.Category,
			&doc.ObjectKey,
			&doc.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
