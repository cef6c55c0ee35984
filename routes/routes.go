package routes

import (
	"net/http"
	"time"

	"sherpa/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterWebhookRoutes registers the WhatsApp webhook endpoints: the GET
// verification handshake and the POST delivery receiver.
func RegisterWebhookRoutes(r *gin.Engine, wh *handlers.WebhookHandler) {
	r.GET("/webhook", wh.Verify)
	r.POST("/webhook", wh.Receive)
}

// RegisterAssetRoutes serves the static car image fallback directory.
func RegisterAssetRoutes(r *gin.Engine) {
	r.Static("/images", "./images")
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Sherpa"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, wh *handlers.WebhookHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterWebhookRoutes(r, wh)
	RegisterAssetRoutes(r)
	RegisterHealthRoute(r)
}
