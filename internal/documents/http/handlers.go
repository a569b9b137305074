package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/telecare-health/telecare-backend/internal/documents/domain"
	"github.com/telecare-health/telecare-backend/internal/documents/service"
)

// Handler handles HTTP requests for medical documents
type Handler struct {
	docs *service.DocumentService
}

// New creates a new Handler
func New(docs *service.DocumentService) *Handler {
	return &Handler{docs: docs}
}

type createUploadRequest struct {
	Name     string `json:"name"`
	FileName string `json:"file_name" binding:"required"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Category string `json:"category"`
}

// CreateUpload registers a document and returns its presigned upload URL.
func (h *Handler) CreateUpload(c *gin.Context) {
	ownerID := c.GetString("subject_id")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body createUploadRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.docs.CreateUpload(c.Request.Context(), service.CreateUploadRequest{
		OwnerID:  ownerID,
		Name:     body.Name,
		FileName: body.FileName,
		FileType: body.FileType,
		FileSize: body.FileSize,
		Category: body.Category,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register document"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"document":   result.Document,
		"upload_url": result.UploadURL,
	})
}

// List returns the caller's documents, optionally filtered by category.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.GetString("subject_id")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	docs, err := h.docs.List(c.Request.Context(), ownerID, c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// Download returns a presigned download URL for an owned document.
func (h *Handler) Download(c *gin.Context) {
	ownerID := c.GetString("subject_id")
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	url, err := h.docs.DownloadURL(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"download_url": url})
}
