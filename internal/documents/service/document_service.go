package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telecare-health/telecare-backend/internal/documents/domain"
)

// MetadataStore persists document rows.
type MetadataStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID, category string) ([]domain.Document, error)
}

// ObjectStore hands out presigned URLs for the document bytes.
type ObjectStore interface {
	UploadURL(ctx context.Context, key, contentType string) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// DocumentService handles business logic for medical documents
type DocumentService struct {
	meta    MetadataStore
	objects ObjectStore
}

func NewDocumentService(meta MetadataStore, objects ObjectStore) *DocumentService {
	return &DocumentService{
		meta:    meta,
		objects: objects,
	}
}

// CreateUpload registers a document and returns the presigned PUT URL
// the browser uploads the bytes to.
type CreateUploadRequest struct {
	OwnerID  string
	Name     string
	FileName string
	FileType string
	FileSize int64
	Category string
}

type CreateUploadResult struct {
	Document  domain.Document
	UploadURL string
}

func (s *DocumentService) CreateUpload(ctx context.Context, req CreateUploadRequest) (*CreateUploadResult, error) {
	if req.OwnerID == "" || req.FileName == "" {
		return nil, fmt.Errorf("owner and file name are required")
	}
	if req.Category == "" {
		req.Category = domain.CategoryOther
	}
	if req.Name == "" {
		req.Name = req.FileName
	}

	doc := domain.Document{
		ID:         uuid.New().String(),
		OwnerID:    req.OwnerID,
		Name:       req.Name,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileSize:   req.FileSize,
		Category:   req.Category,
		UploadedAt: time.Now().UTC(),
	}
	doc.ObjectKey = fmt.Sprintf("documents/%s/%s-%s", doc.OwnerID, doc.ID, doc.FileName)

	uploadURL, err := s.objects.UploadURL(ctx, doc.ObjectKey, doc.FileType)
	if err != nil {
		return nil, err
	}

	if err := s.meta.Create(ctx, &doc); err != nil {
		return nil, err
	}

	return &CreateUploadResult{Document: doc, UploadURL: uploadURL}, nil
}

// List returns an owner's documents.
func (s *DocumentService) List(ctx context.Context, ownerID, category string) ([]domain.Document, error) {
	return s.meta.ListByOwner(ctx, ownerID, category)
}

// DownloadURL returns a presigned GET for an owned document.
func (s *DocumentService) DownloadURL(ctx context.Context, ownerID, id string) (string, error) {
	doc, err := s.meta.GetByID(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	return s.objects.DownloadURL(ctx, doc.ObjectKey)
}
