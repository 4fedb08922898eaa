// main.go
package main

import (
	"context"
	"log"
	"time"

	"matrimony-otp/cmd"
	"matrimony-otp/internal/data/repository"
	"matrimony-otp/internal/jobs"
	"matrimony-otp/internal/wire"
	"matrimony-otp/pkg/database"
	"matrimony-otp/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger)

	// Start the expired-record cleanup sweep
	cleanup := jobs.NewCleanupJob(
		app.Service.OTP,
		time.Duration(config.OTP.CleanupIntervalMinutes)*time.Minute,
		logger,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanup.Start(ctx)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
