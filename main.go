// File: sherpa/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sherpa/config"
	"sherpa/database"
	inventoryRepo "sherpa/database/repository/inventory"
	testdriveRepo "sherpa/database/repository/testdrive"
	"sherpa/handlers"
	"sherpa/middleware"
	"sherpa/routes"
	"sherpa/services/conversation"
	ai "sherpa/services/intelligence"
	"sherpa/services/session"
	"sherpa/services/storage"
	"sherpa/services/whatsapp"
	"sherpa/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitDedupCache()

	// Car images: Cloudinary when configured, static hosting otherwise.
	var imageService storage.ImageService
	cloudinarySvc, err := storage.NewCloudinaryImageService(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
		config.AppConfig.AssetBaseURL,
		logger,
	)
	if err != nil {
		logger.Sugar().Warnf("main: cloudinary not configured, serving static images: %v", err)
		imageService = &storage.StaticImageService{BaseURL: config.AppConfig.AssetBaseURL}
	} else {
		imageService = cloudinarySvc
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	invRepo := inventoryRepo.NewMongoInventoryRepo()
	recordsRepo := testdriveRepo.NewMongoTestDriveRepo()

	// services.
	assistant := &ai.FallbackAssistant{
		Generator: ai.NewGeminiClient(config.AppConfig.GeminiAPIKey),
		Context:   ai.NewRedisContextStore(utils.GetCacheClient(), 30*time.Minute),
		Timeout:   15 * time.Second,
		Logger:    logger,
	}
	sender := whatsapp.NewGraphAPISender(
		config.AppConfig.WhatsAppAPIToken,
		config.AppConfig.WhatsAppPhoneNumberID,
	)
	presenter := whatsapp.NewPresenter(sender, logger)

	conversationService := &conversation.DefaultConversationService{
		Sessions:  session.NewMemoryStore(),
		Catalog:   &conversation.MenuCatalog{Inventory: invRepo},
		Booking:   &conversation.BookingFlow{Records: recordsRepo, Logger: logger},
		Assistant: assistant,
		Images:    imageService,
		Deliverer: presenter,
		Logger:    logger,
	}

	webhookHandler := handlers.NewWebhookHandler(conversationService, utils.GetDedupCacheClient(), logger)
	routes.RegisterRoutes(router, webhookHandler)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on port %s", config.AppConfig.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
