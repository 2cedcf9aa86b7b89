package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fonciercd/cadastre-api/internal/config"
	"github.com/fonciercd/cadastre-api/internal/database"
	"github.com/fonciercd/cadastre-api/internal/handlers"
	"github.com/fonciercd/cadastre-api/internal/logger"
	"github.com/fonciercd/cadastre-api/internal/middleware"
	"github.com/fonciercd/cadastre-api/internal/repository"
	"github.com/fonciercd/cadastre-api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Cadastre API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Apply pending schema migrations before opening the pool
	if err := database.RunMigrations(cfg.Database, cfg.Database.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations", err, map[string]interface{}{
			"dir": cfg.Database.MigrationsDir,
		})
	}

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository layer
	parcelRepo := repository.NewParcelRepository(db.Pool)
	buildingRepo := repository.NewBuildingRepository(db.Pool)
	personRepo := repository.NewPersonRepository(db.Pool)
	referenceRepo := repository.NewReferenceRepository(db.Pool)

	// Initialize service layer
	parcelService := services.NewParcelService(parcelRepo, log)
	buildingService := services.NewBuildingService(buildingRepo, log)
	populationService := services.NewPopulationService(parcelRepo, personRepo, log)
	statsService := services.NewStatsService(parcelRepo, buildingRepo, personRepo, referenceRepo, log)
	referenceService := services.NewReferenceService(referenceRepo, log)

	// Initialize handlers
	parcelHandler := handlers.NewParcelHandler(parcelService)
	buildingHandler := handlers.NewBuildingHandler(buildingService)
	populationHandler := handlers.NewPopulationHandler(populationService)
	statsHandler := handlers.NewStatsHandler(statsService)
	referenceHandler := handlers.NewReferenceHandler(referenceService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		parcels := v1.Group("/parcelles")
		{
			parcels.GET("", parcelHandler.List)
			parcels.GET("/geojson", parcelHandler.GeoJSON)
			parcels.GET("/:id", parcelHandler.Get)
		}

		buildings := v1.Group("/batiments")
		{
			buildings.GET("", buildingHandler.List)
			buildings.GET("/:id", buildingHandler.Get)
		}

		populations := v1.Group("/populations")
		{
			populations.GET("", populationHandler.List)
			populations.GET("/export", populationHandler.Export)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/pyramide-ages", statsHandler.AgePyramid)
			stats.GET("/population-par-quartier", statsHandler.PopulationByGeography)
		}

		v1.GET("/references", referenceHandler.List)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
