// Facepilot - hands-free pointer and keyboard control from facial gestures
// Consumes landmark frames from the landmark daemon and drives the input daemon
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/facepilot/facepilot/internal/config"
	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/daemon"
)

func main() {
	_ = godotenv.Load()

	cfg := parseFlags()
	log.Init(config.LogLevel())

	d, err := daemon.New(cfg)
	if err != nil {
		stdlog.Fatalf("configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := d.Init(ctx); err != nil {
		stdlog.Fatalf("initialization failed: %v", err)
	}
	defer d.Shutdown()

	if err := d.Run(ctx); err != nil {
		stdlog.Fatalf("runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
// Flags override FACEPILOT_* environment variables.
func parseFlags() daemon.Config {
	port := flag.String("port", config.Port(), "Dashboard HTTP port")
	provider := flag.String("provider", config.ProviderURL(), "Landmark daemon websocket URL")
	actuator := flag.String("actuator", config.ActuatorURL(), "Input daemon websocket URL")
	profiles := flag.String("profiles", config.ProfileDir(), "Profile storage directory")
	dryRun := flag.Bool("dry-run", false, "Log actions instead of sending them to the input daemon")
	record := flag.String("record", "", "Record the landmark session to a JSONL file")
	flag.Parse()

	return daemon.Config{
		Port:        *port,
		ProviderURL: *provider,
		ActuatorURL: *actuator,
		ProfileDir:  *profiles,
		DryRun:      *dryRun,
		RecordPath:  *record,
		Arbiter:     action.DefaultConfig(),
	}
}
