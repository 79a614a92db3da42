// Package config provides configuration helpers for facepilot commands.
package config

import "os"

// Defaults for the facepilot daemon.
const (
	DefaultPort        = "8710"
	DefaultProviderURL = "ws://127.0.0.1:8711/landmarks"
	DefaultActuatorURL = "ws://127.0.0.1:8712/input"
	DefaultProfileDir  = "profiles"
)

// Port returns the dashboard port from FACEPILOT_PORT or the default.
func Port() string {
	if p := os.Getenv("FACEPILOT_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// ProviderURL returns the landmark daemon URL from FACEPILOT_PROVIDER_URL
// or the default.
func ProviderURL() string {
	if u := os.Getenv("FACEPILOT_PROVIDER_URL"); u != "" {
		return u
	}
	return DefaultProviderURL
}

// ActuatorURL returns the input daemon URL from FACEPILOT_ACTUATOR_URL
// or the default.
func ActuatorURL() string {
	if u := os.Getenv("FACEPILOT_ACTUATOR_URL"); u != "" {
		return u
	}
	return DefaultActuatorURL
}

// ProfileDir returns the profile storage directory from
// FACEPILOT_PROFILE_DIR or the default.
func ProfileDir() string {
	if d := os.Getenv("FACEPILOT_PROFILE_DIR"); d != "" {
		return d
	}
	return DefaultProfileDir
}

// LogLevel returns the log level from FACEPILOT_LOG_LEVEL or "info".
func LogLevel() string {
	if l := os.Getenv("FACEPILOT_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}
