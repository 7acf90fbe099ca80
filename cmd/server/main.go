package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"compsengine/server/config"
	"compsengine/server/internal/api"
	"compsengine/server/internal/comps"
	"compsengine/server/internal/database"
	"compsengine/server/internal/processor"
	"compsengine/server/internal/queue"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbPath := cfg.Server.DatabasePath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", dbPath)

	// Initialize database
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// The write path goes through gorm; the engine reads through database/sql
	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	// Start the ingest pipeline
	ingestQueue := queue.NewIngestQueue(cfg.BatchProcessing.QueueSize, logger)
	ingestQueue.Start()
	batchProcessor := processor.NewBatchProcessor(gormDB, ingestQueue, cfg, logger)
	batchProcessor.Start()
	defer batchProcessor.Stop()

	// Initialize the comps engine
	engine := comps.NewEngine(db, cfg, logger)

	// Initialize router
	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, engine, ingestQueue)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
