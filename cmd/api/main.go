package main

import (
	"fmt"

	"spendtrack/internal/config"
	"spendtrack/internal/database"
	"spendtrack/internal/handlers"
	"spendtrack/internal/logger"
	"spendtrack/internal/services"
	"spendtrack/internal/validator"
)

// @title           spendtrack API
// @version         1.0
// @description     Transaction record store backing the spendtrack ledger.

// @host      localhost:8080
// @BasePath  /api

func main() {
	appConfig, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(appConfig.Env)
	defer logger.Sync()

	if err := run(appConfig); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(appConfig *config.Config) error {
	log := logger.Get()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("closing database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	transactionService := services.NewTransactionService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	healthHandler := handlers.NewHealthHandler(dbManager)

	router := handlers.NewRouter(transactionHandler, healthHandler)

	log.Infow("Starting spendtrack API server", "port", appConfig.Port, "driver", dbConfig.Driver)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
