// Package web provides the operator surface for facepilot: a REST API
// for calibration and profile edits plus live websocket streams of the
// expression state and logs.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/hub"
	"github.com/facepilot/facepilot/pkg/profile"
)

// Status is the daemon status shown on the dashboard
type Status struct {
	ProviderConnected bool   `json:"provider_connected"`
	ActuatorConnected bool   `json:"actuator_connected"`
	Calibration       string `json:"calibration"`
	ActiveProfile     string `json:"active_profile"`
	DragHeld          bool   `json:"drag_held"`
	FPS               float64 `json:"fps"`
}

// StateUpdate is one frame's worth of dashboard data
type StateUpdate struct {
	State       expression.State `json:"state"`
	Events      []action.Event   `json:"events,omitempty"`
	Calibration string           `json:"calibration"`
}

// LogEntry is a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, action, calibration, error
	Message string `json:"message"`
}

// Server is the operator web server
type Server struct {
	app  *fiber.App
	port string

	manager *profile.Manager

	// Status
	status   Status
	statusMu sync.RWMutex

	// Latest expression state
	latest   StateUpdate
	latestMu sync.RWMutex

	// Log buffer (last 500 entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	stateHub *hub.Hub
	logHub   *hub.Hub

	// OnCalibrate starts a calibration cycle
	OnCalibrate func()

	// OnRelease force-releases all held toggles
	OnRelease func()
}

// NewServer creates the operator web server
func NewServer(port string, manager *profile.Manager) *Server {
	s := &Server{
		port:     port,
		manager:  manager,
		logs:     make([]LogEntry, 0, 500),
		stateHub: hub.New("state"),
		logHub:   hub.New("logs"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "FacePilot",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static dashboard files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/state", s.handleState)
	api.Post("/calibrate", s.handleCalibrate)
	api.Post("/release", s.handleRelease)

	api.Get("/profiles", s.handleListProfiles)
	api.Post("/profiles", s.handleCreateProfile)
	api.Delete("/profiles/:id", s.handleDeleteProfile)
	api.Post("/profiles/:id/activate", s.handleActivateProfile)
	api.Post("/profiles/:id/rename", s.handleRenameProfile)

	api.Put("/triggers/:channel", s.handleUpdateTrigger)
	api.Put("/gains", s.handleUpdateGains)
	api.Put("/tuning", s.handleUpdateTuning)

	api.Post("/combos", s.handleAddCombo)
	api.Delete("/combos/:idx", s.handleRemoveCombo)
	api.Post("/combos/:idx/toggle", s.handleToggleCombo)

	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))

	s.app = app
	return s
}

// Start starts the web server
func (s *Server) Start() error {
	log.Info("operator dashboard listening", "port", s.port)

	go s.stateHub.Run()
	go s.logHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "err", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// UpdateStatus updates the daemon status shown on the dashboard
func (s *Server) UpdateStatus(update func(*Status)) {
	s.statusMu.Lock()
	update(&s.status)
	s.statusMu.Unlock()
}

// PublishState pushes one frame's expression state and events to
// connected dashboard clients
func (s *Server) PublishState(state expression.State, events []action.Event, calibration string) {
	upd := StateUpdate{State: state, Events: events, Calibration: calibration}

	s.latestMu.Lock()
	s.latest = upd
	s.latestMu.Unlock()

	s.stateHub.BroadcastJSON(upd)
}

// AddLog adds a log entry and broadcasts it to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > 500 {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON(entry)
}
