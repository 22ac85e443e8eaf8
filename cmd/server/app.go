package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwell/taskwell-api/internal/api"
	"github.com/taskwell/taskwell-api/internal/config"
	"github.com/taskwell/taskwell-api/internal/events"
	"github.com/taskwell/taskwell-api/internal/platform/dapr"
	"github.com/taskwell/taskwell-api/internal/platform/logger"
	"github.com/taskwell/taskwell-api/internal/platform/postgres"
	"github.com/taskwell/taskwell-api/internal/reminder"
	"github.com/taskwell/taskwell-api/internal/service"
)

// application holds the server's wired dependencies.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	daprClient  *dapr.Client
	taskService service.TaskService
}

// initializeApp loads configuration, sets up logging, connects to the
// database, and wires the service layer.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"dapr_port", cfg.Dapr.HTTPPort,
		"pubsub", cfg.Dapr.PubsubName)

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	daprClient := dapr.NewClient(cfg.Dapr.BaseURL(), log)

	publisher, err := events.NewEventPublisher(daprClient, cfg.Dapr.PubsubName, cfg.Topics, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	scheduler, err := reminder.NewJobScheduler(daprClient, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder scheduler: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db)
	reminderLead := time.Duration(cfg.Reminder.LeadMinutes) * time.Minute

	taskService, err := service.NewTaskService(db, taskStore, publisher, scheduler, reminderLead, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      log,
		db:          db,
		daprClient:  daprClient,
		taskService: taskService,
	}, nil
}

// healthHandler builds the probe handler over the app's dependencies.
func (app *application) healthHandler() *api.HealthHandler {
	return api.NewHealthHandler(app.db, app.daprClient, app.logger)
}

// cleanup releases held resources during shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
