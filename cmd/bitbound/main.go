// BitBound Core - Declarative Sensor Rule Engine
//
// This is the main entry point for the BitBound Core daemon. BitBound
// watches device properties through a fixed-rate tick loop and fires
// callbacks when declarative rules (threshold expressions, change
// detection, intervals) are met. Fired events are published over MQTT
// and readings are streamed to InfluxDB for dashboards.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitbound/bitbound-core/internal/datalog"
	"github.com/bitbound/bitbound-core/internal/device"
	"github.com/bitbound/bitbound-core/internal/event"
	"github.com/bitbound/bitbound-core/internal/infrastructure/config"
	"github.com/bitbound/bitbound-core/internal/infrastructure/database"
	"github.com/bitbound/bitbound-core/internal/infrastructure/influxdb"
	"github.com/bitbound/bitbound-core/internal/infrastructure/logging"
	"github.com/bitbound/bitbound-core/internal/infrastructure/mqtt"
	"github.com/bitbound/bitbound-core/internal/rulestore"
	"github.com/bitbound/bitbound-core/internal/units"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting BitBound Core",
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

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database and rule store
	db, err := database.Open(cfg.Database)
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

	ruleRepo := rulestore.NewSQLiteRepository(db.DB)
	if err := ruleRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("preparing rule store: %w", err)
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
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Attach devices declared in config
	devices := device.NewRegistry()
	if err := attachDevices(cfg, devices, mqttClient, log); err != nil {
		return fmt.Errorf("attaching devices: %w", err)
	}
	log.Info("devices attached", "count", devices.Count())

	// Data logging pipeline: ring buffer plus optional InfluxDB sink
	var writer datalog.MetricWriter
	if influxClient != nil {
		writer = influxClient
	}
	recorder := datalog.NewRecorder(datalog.NewRingBuffer(cfg.Datalog.BufferSize), writer)

	// Rule registry and scheduler
	rules := event.NewRegistry()
	rules.SetLogger(log.With("component", "registry"))

	scheduler, err := event.NewScheduler(rules, cfg.Scheduler.TickInterval())
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	scheduler.SetLogger(log.With("component", "scheduler"))
	scheduler.SetRecorder(recorder)

	// Seed the rule store from config on first boot, then register
	// whatever the store holds.
	callback := eventCallback(mqttClient, influxClient, log)
	registered, err := registerRules(ctx, cfg, ruleRepo, rules, devices, callback)
	if err != nil {
		return fmt.Errorf("registering rules: %w", err)
	}
	log.Info("rules registered", "count", registered)

	// Verify infrastructure is healthy before starting the loop
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	scheduler.Start()
	defer scheduler.Stop()
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. Scheduler stop (finishes the in-flight tick)
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("BitBound Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BITBOUND_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BITBOUND_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// attachDevices builds and registers the devices declared in config.
//
// Simulated devices get their initial property values; MQTT devices are
// subscribed to their state topics so readings flow in from the broker.
func attachDevices(cfg *config.Config, devices *device.Registry, mqttClient *mqtt.Client, log *logging.Logger) error {
	for _, dc := range cfg.Devices {
		switch dc.Type {
		case "sim":
			dev := device.NewSimDevice(dc.ID)
			for _, pc := range dc.Properties {
				unit, err := resolveUnit(pc.Unit)
				if err != nil {
					return fmt.Errorf("device %s property %s: %w", dc.ID, pc.Name, err)
				}
				dev.Set(pc.Name, units.Value{Magnitude: pc.Initial, Unit: unit})
			}
			if err := devices.Attach(dev); err != nil {
				return err
			}

		case "mqtt":
			if mqttClient == nil {
				return fmt.Errorf("device %s requires MQTT, which is disabled", dc.ID)
			}
			props := make([]string, len(dc.Properties))
			for i, pc := range dc.Properties {
				props[i] = pc.Name
			}
			dev := device.NewMQTTDevice(dc.ID, props)
			for _, topic := range dev.StateTopics() {
				if err := mqttClient.Subscribe(topic, byte(cfg.MQTT.QoS), dev.HandleState); err != nil {
					return fmt.Errorf("subscribing %s: %w", topic, err)
				}
			}
			if err := devices.Attach(dev); err != nil {
				return err
			}
			log.Info("MQTT device subscribed", "device_id", dc.ID, "properties", len(props))
		}
	}
	return nil
}

// resolveUnit maps a config unit string to a Unit tag. Empty means
// dimensionless.
func resolveUnit(suffix string) (units.Unit, error) {
	if suffix == "" {
		return units.None, nil
	}
	unit, ok := units.Lookup(suffix)
	if !ok {
		return units.None, fmt.Errorf("%w: %q", units.ErrUnknownUnit, suffix)
	}
	return unit, nil
}

// registerRules loads rule declarations and registers them with the
// registry.
//
// On first boot (empty store) the config's rules are persisted to the
// store; afterwards the store is the source of truth, so rules survive
// restarts with stable IDs. Firing state always starts fresh.
func registerRules(
	ctx context.Context,
	cfg *config.Config,
	repo rulestore.Repository,
	rules *event.Registry,
	devices *device.Registry,
	callback event.Callback,
) (int, error) {
	records, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading persisted rules: %w", err)
	}

	if len(records) == 0 {
		for _, rc := range cfg.Rules {
			record := rulestore.RuleRecord{
				ID:         event.GenerateRuleID(),
				Kind:       event.RuleKind(rc.Kind),
				DeviceID:   rc.Device,
				Expression: rc.Expression,
				Property:   rc.Property,
				Period:     rc.Period(),
				Debounce:   rc.Debounce(),
			}
			if err := repo.Save(ctx, record); err != nil {
				return 0, fmt.Errorf("persisting config rule: %w", err)
			}
			records = append(records, record)
		}
	}

	for _, record := range records {
		dev, err := devices.Get(record.DeviceID)
		if err != nil {
			return 0, fmt.Errorf("rule %s: %w", record.ID, err)
		}

		switch record.Kind {
		case event.KindThreshold:
			_, err = rules.RegisterThreshold(dev, record.Expression, callback, record.Debounce)
		case event.KindChange:
			_, err = rules.RegisterChange(dev, record.Property, callback, record.Debounce)
		case event.KindInterval:
			_, err = rules.RegisterInterval(dev, record.Period, callback)
		default:
			err = fmt.Errorf("unknown rule kind %q", record.Kind)
		}
		if err != nil {
			return 0, fmt.Errorf("rule %s: %w", record.ID, err)
		}
	}

	return len(records), nil
}

// eventPayload is the JSON shape published for fired rules.
type eventPayload struct {
	Kind      string   `json:"kind"`
	RuleID    string   `json:"rule_id"`
	DeviceID  string   `json:"device_id"`
	Property  string   `json:"property,omitempty"`
	Old       *float64 `json:"old,omitempty"`
	New       *float64 `json:"new,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// eventCallback builds the shared callback for all registered rules:
// log the event, publish it over MQTT and record it in InfluxDB.
func eventCallback(mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) event.Callback {
	topics := mqtt.Topics{}

	return func(ev event.Event) {
		log.Info("rule fired",
			"kind", ev.Kind,
			"rule_id", ev.RuleID,
			"device_id", ev.DeviceID,
			"property", ev.Property,
		)

		if influxClient != nil {
			influxClient.WriteRuleEvent(string(ev.Kind), string(ev.RuleID), ev.DeviceID, ev.Timestamp)
		}

		if mqttClient == nil {
			return
		}

		payload := eventPayload{
			Kind:      string(ev.Kind),
			RuleID:    string(ev.RuleID),
			DeviceID:  ev.DeviceID,
			Property:  ev.Property,
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
		}
		if ev.Old != nil {
			payload.Old = &ev.Old.Magnitude
		}
		if ev.New != nil {
			payload.New = &ev.New.Magnitude
			payload.Unit = string(ev.New.Unit)
		}

		data, err := json.Marshal(payload)
		if err != nil {
			log.Error("marshalling event payload", "error", err)
			return
		}
		if err := mqttClient.Publish(topics.Event(string(ev.Kind)), data, 1, false); err != nil {
			log.Warn("publishing event", "error", err)
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
