package domain

import (
	"errors"
	"time"
)

// Document categories as the portal presents them.
const (
	CategoryLabReport    = "lab_report"
	CategoryPrescription = "prescription"
	CategoryImaging      = "imaging"
	CategoryOther        = "other"
)

// Document is an uploaded medical document's metadata. The bytes live
// in object storage; this row only points at them.
type Document struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	Name       string    `json:"name" db:"name"`
	FileName   string    `json:"file_name" db:"file_name"`
	FileType   string    `json:"file_type" db:"file_type"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	Category   string    `json:"category" db:"category"`
	ObjectKey  string    `json:"-" db:"object_key"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

var ErrDocumentNotFound = errors.New("document not found")
