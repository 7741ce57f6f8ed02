// TaskHub Core - multi-tenant task backend.
//
// This is the main entry point. It loads configuration, opens and migrates
// the SQLite database, seeds the first Admin, optionally connects the MQTT
// change-event publisher, and serves the HTTP API until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/taskhub-core/internal/api"
	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/events"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/config"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/database"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/taskhub-core/internal/organization"
	"github.com/nerrad567/taskhub-core/internal/resolver"
	"github.com/nerrad567/taskhub-core/internal/task"
	"github.com/nerrad567/taskhub-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on a clean shutdown once ctx is cancelled.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting TaskHub Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	userRepo := auth.NewUserRepository(db.DB)
	orgRepo := organization.NewRepository(db.DB)
	hasher := auth.NewHasher(cfg.Security.Password.Cost, cfg.Security.Password.MaxConcurrent)

	if _, seedErr := auth.SeedAdmin(ctx, db.DB, hasher, auth.SeedOptions{
		AdminUsername:    cfg.Seed.AdminUsername,
		OrganizationName: cfg.Seed.OrganizationName,
	}, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin: %w", seedErr)
	}

	tokens, err := auth.NewTokenService(cfg.Security.JWT.Secret, cfg.GetTokenTTL())
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	health := map[string]api.HealthChecker{"database": db}

	var publisher events.Publisher = events.Noop{}
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		publisher = events.NewMQTTPublisher(mqttClient)
		health["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled, change events will not be published")
	}

	res := resolver.New(resolver.Deps{
		Users:         userRepo,
		Management:    auth.NewManagementRepository(db.DB),
		Organizations: orgRepo,
		Tasks:         task.NewRepository(db.DB),
		Tokens:        tokens,
		Hasher:        hasher,
		Events:        publisher,
		Logger:        log,
	})

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		RateLimit: cfg.Security.RateLimit,
		Logger:    log,
		Tokens:    tokens,
		Resolver:  res,
		Health:    health,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, health); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	// Deferred closes run in reverse order: API server, MQTT, database.
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses TASKHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TASKHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck returns the first failing component, or nil.
func healthCheck(ctx context.Context, checkers map[string]api.HealthChecker) error {
	for name, checker := range checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
