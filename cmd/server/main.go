package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/api"
	"github.com/syngenta/acai-ts-sub001/internal/config"
	"github.com/syngenta/acai-ts-sub001/internal/schema"
	"github.com/syngenta/acai-ts-sub001/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.App.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if cfg.Schema.FilePath == "" {
		logger.Fatal("SCHEMA_FILE_PATH is required")
	}
	store, err := schema.NewStoreFromFile(cfg.Schema.FilePath, cfg.Schema.Strict, logger)
	if err != nil {
		logger.Fatal("Failed to load schema document", zap.Error(err))
	}
	validator := validation.NewValidator(store, logger)
	handlers := api.NewHandlers(validator, logger)

	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/validate/request", handlers.ValidateRequest)
		v1.POST("/validate/record", handlers.ValidateRecord)
	}
	router.GET("/api/v1/health", handlers.HealthCheck)

	addr := fmt.Sprintf(":%s", cfg.App.Port)
	logger.Info("Server listening",
		zap.String("address", addr),
		zap.String("schema_file", cfg.Schema.FilePath),
		zap.Bool("strict", cfg.Schema.Strict),
	)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
