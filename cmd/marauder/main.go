// Marauder Bridge - ESP32 Marauder companion daemon
//
// This is the main entry point for the Marauder bridge. It supervises
// the serial link to an ESP32 Marauder device, aggregates scan results
// into queryable state, records sessions, and optionally republishes
// events to MQTT, archives sightings to SQLite, writes signal telemetry
// to InfluxDB, and serves a localhost HTTP/WebSocket API for display
// layers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jlucaswrk/marauder-tui/internal/api"
	"github.com/jlucaswrk/marauder-tui/internal/bus"
	"github.com/jlucaswrk/marauder-tui/internal/engine"
	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/config"
	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/database"
	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/influxdb"
	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/logging"
	"github.com/jlucaswrk/marauder-tui/internal/infrastructure/mqtt"
	"github.com/jlucaswrk/marauder-tui/internal/link"
	"github.com/jlucaswrk/marauder-tui/internal/survey"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Marauder bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. A missing config file is not an error: the
	// bridge runs with defaults plus environment overrides.
	cfg, err := loadConfig(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Event bus connects the serial link to every consumer.
	events := bus.New()
	events.SetLogger(log)

	// Open survey archive database (optional)
	var archive *survey.Archive
	if cfg.Database.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database connected", "path", cfg.Database.Path)

		if schemaErr := db.EnsureSchema(ctx); schemaErr != nil {
			return fmt.Errorf("preparing database schema: %w", schemaErr)
		}

		archive = survey.New(db)
		archive.SetLogger(log)
		events.Subscribe(archive.HandleEvent)
		log.Info("survey archive enabled")
	} else {
		log.Info("survey archive disabled")
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		events.Subscribe(mqttClient.HandleEvent)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		events.Subscribe(influxClient.HandleEvent)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Serial link supervisor
	supervisor := link.NewSupervisor(link.Config{
		Port:           cfg.Serial.Port,
		BaudRate:       cfg.Serial.BaudRate,
		ReconnectDelay: time.Duration(cfg.Serial.ReconnectDelay) * time.Second,
		RawHistorySize: cfg.Serial.RawHistorySize,
	}, events)
	supervisor.SetLogger(log)

	// Engine consumes parsed events and issues commands back down the link
	eng := engine.New(supervisor, engine.Config{
		SessionsDir:     cfg.Sessions.Dir,
		ActivityLogSize: cfg.Engine.ActivityLogSize,
	})
	eng.SetLogger(log)
	events.Subscribe(eng.HandleEvent)

	if err := supervisor.Connect(cfg.Serial.Port); err != nil {
		// The device may simply be unplugged. The supervisor keeps
		// retrying in the background, so this is not fatal.
		log.Warn("serial link not yet available", "error", err)
	} else {
		eng.SetLinkUp(supervisor.PortPath(), true)
		log.Info("serial link connected", "port", supervisor.PortPath())
	}
	defer func() {
		log.Info("disconnecting serial link")
		supervisor.Disconnect()
	}()

	// HTTP API server (optional)
	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:      cfg.API,
			WS:          cfg.WebSocket,
			Logger:      log,
			Engine:      eng,
			Raw:         supervisor,
			Archive:     archive,
			SessionsDir: cfg.Sessions.Dir,
			Version:     version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (if enabled)
	// 2. Serial link
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database (if enabled)

	log.Info("Marauder bridge stopped")
	return nil
}

// loadConfig loads configuration from the path in MARAUDER_CONFIG (or the
// default path). A missing file yields defaults plus environment overrides.
func loadConfig(log *logging.Logger) (*config.Config, error) {
	path := os.Getenv("MARAUDER_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info("no config file found, using defaults", "path", path)
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Info("configuration loaded", "path", path)
	return cfg, nil
}
