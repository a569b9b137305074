package http

import "github.com/gin-gonic/gin"

// Register registers the document routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/documents", h.CreateUpload)
	rg.GET("/documents", h.List)
	rg.GET("/documents/:id/download", h.Download)
}
