package http

import "github.com/gin-gonic/gin"

// Register registers the session routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signin", h.SignIn)
	rg.POST("/auth/signup", h.SignUp)
	rg.POST("/auth/signout", h.SignOut)
	if h.google != nil {
		rg.GET("/auth/google/url", h.GoogleAuthURL)
		rg.POST("/auth/google/callback", h.GoogleCallback)
	}
	rg.GET("/auth/me", h.Me)
	rg.GET("/navigation/decision", h.Decide)
}
