package http

import "github.com/gin-gonic/gin"

// Register registers the appointment routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/appointments", h.Book)
	rg.GET("/appointments", h.List)
	rg.PATCH("/appointments/:id/status", h.UpdateStatus)
	rg.DELETE("/appointments/local", h.Invalidate)
}
