// Package daemon wires the facepilot runtime together: the landmark
// provider, the per-frame pipeline, the actuator, the profile manager
// and the operator web surface. The pipeline runs on a single goroutine;
// everything arriving from other goroutines (operator commands, monitor
// reports) is funneled through a command channel and applied between
// frames.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/actuator"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/landmark"
	"github.com/facepilot/facepilot/pkg/pipeline"
	"github.com/facepilot/facepilot/pkg/profile"
	"github.com/facepilot/facepilot/pkg/protocol"
	"github.com/facepilot/facepilot/pkg/web"
)

// Config holds daemon settings
type Config struct {
	Port        string
	ProviderURL string
	ActuatorURL string
	ProfileDir  string

	// DryRun logs actions instead of sending them to the input daemon
	DryRun bool

	// RecordPath, when set, records the landmark session as JSONL for
	// later replay
	RecordPath string

	Arbiter action.Config
}

// Daemon owns the facepilot runtime
type Daemon struct {
	cfg Config

	manager  *profile.Manager
	pipe     *pipeline.Pipeline
	provider *landmark.Client
	actuator *actuator.Client
	web      *web.Server

	activeID string
	commands chan func()
	recorder *landmark.SessionWriter

	fpsCount int
	fpsSince time.Time
}

// New creates a daemon with its profile manager loaded from disk
func New(cfg Config) (*Daemon, error) {
	store := profile.NewFileStore(cfg.ProfileDir)
	manager, err := profile.NewManager(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	return &Daemon{
		cfg:      cfg,
		manager:  manager,
		commands: make(chan func(), 16),
	}, nil
}

// Init connects the external collaborators and builds the pipeline
func (d *Daemon) Init(ctx context.Context) error {
	var act action.Actuator
	if d.cfg.DryRun {
		act = action.DryRun{}
		log.Info("dry-run mode: actions are logged, not sent")
	} else {
		client := actuator.NewClient(d.cfg.ActuatorURL)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		client.OnPointerPos = d.onPointerPos
		client.OnPhysicalClick = d.onPhysicalClick
		d.actuator = client
		act = client
	}

	active := d.manager.Active()
	d.activeID = active.ID
	d.pipe = pipeline.New(active, d.cfg.Arbiter, act)
	d.pipe.OnCalibrated = d.onCalibrated

	d.provider = landmark.NewClient(d.cfg.ProviderURL)
	if d.cfg.RecordPath != "" {
		recorder, err := landmark.NewSessionWriter(d.cfg.RecordPath)
		if err != nil {
			return err
		}
		d.recorder = recorder
		d.provider.OnWire = func(lm protocol.LandmarksData) {
			if err := recorder.Append(time.Now().UnixMilli(), lm); err != nil {
				log.Warn("session record failed", "err", err)
			}
		}
		log.Info("recording landmark session", "path", d.cfg.RecordPath)
	}
	if err := d.provider.Connect(ctx); err != nil {
		return err
	}

	d.web = web.NewServer(d.cfg.Port, d.manager)
	d.web.OnCalibrate = func() { d.enqueue(d.pipe.Calibrate) }
	d.web.OnRelease = func() { d.enqueue(d.releaseAll) }
	d.web.UpdateStatus(func(s *web.Status) {
		s.ProviderConnected = true
		s.ActuatorConnected = !d.cfg.DryRun
		s.ActiveProfile = active.Name
		s.Calibration = d.pipe.Calibration().String()
	})
	// The dashboard must reflect a lost input daemon connection
	if d.actuator != nil {
		d.actuator.OnDisconnect = func() {
			d.web.UpdateStatus(func(s *web.Status) { s.ActuatorConnected = false })
			d.web.AddLog("system", "Input daemon connection lost")
		}
	}
	d.web.StartAsync()

	return nil
}

// Run processes landmark frames until the context ends or the provider
// stream closes
func (d *Daemon) Run(ctx context.Context) error {
	frames := d.provider.Frames()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd := <-d.commands:
			cmd()

		case frame, ok := <-frames:
			if !ok {
				d.web.UpdateStatus(func(s *web.Status) { s.ProviderConnected = false })
				return fmt.Errorf("landmark stream closed")
			}
			d.processFrame(frame)
		}
	}
}

// Shutdown releases held actions and closes connections
func (d *Daemon) Shutdown() {
	if d.pipe != nil {
		d.pipe.ForceReleaseAll()
	}
	if d.provider != nil {
		d.provider.Close()
	}
	if d.actuator != nil {
		d.actuator.Close()
	}
	if d.recorder != nil {
		d.recorder.Close()
	}
	if d.web != nil {
		d.web.Shutdown()
	}
}

// processFrame applies pending edits, runs the pipeline and publishes
// the result
func (d *Daemon) processFrame(frame landmark.Frame) {
	// Operator edits land only between Process calls
	d.manager.ApplyPending()
	if active := d.manager.Active(); active.ID != d.activeID {
		d.activeID = active.ID
		d.pipe.SetProfile(active)
		log.Info("profile activated", "name", active.Name)
		d.web.UpdateStatus(func(s *web.Status) { s.ActiveProfile = active.Name })
	}

	now := time.Now()
	d.trackFPS(now)

	res := d.pipe.Process(frame, now)
	if res.Skipped {
		return
	}

	d.web.PublishState(res.State, res.Events, res.Calibration.String())
	for _, ev := range res.Events {
		if ev.Kind != action.KindContinuous {
			d.web.AddLog("action", fmt.Sprintf("%s (%s)", ev.Action, ev.Kind))
		}
	}
	d.web.UpdateStatus(func(s *web.Status) {
		s.Calibration = res.Calibration.String()
		s.DragHeld = d.pipe.DragHeld()
	})
}

// trackFPS publishes the observed frame rate once a second
func (d *Daemon) trackFPS(now time.Time) {
	if d.fpsSince.IsZero() {
		d.fpsSince = now
	}
	d.fpsCount++
	if elapsed := now.Sub(d.fpsSince); elapsed >= time.Second {
		fps := float64(d.fpsCount) / elapsed.Seconds()
		d.fpsCount = 0
		d.fpsSince = now
		d.web.UpdateStatus(func(s *web.Status) { s.FPS = fps })
	}
}

// enqueue funnels work onto the pipeline goroutine. Drops the command if
// the daemon is shutting down and the queue is full.
func (d *Daemon) enqueue(cmd func()) {
	select {
	case d.commands <- cmd:
	default:
		log.Warn("command queue full, dropping operator command")
	}
}

// onCalibrated persists a freshly derived baseline into the active
// profile
func (d *Daemon) onCalibrated(b expression.Baseline) {
	d.manager.SetBaseline(b)
	d.web.AddLog("calibration", "Calibration complete, baseline saved")
}

// onPointerPos forwards physical pointer samples for drag motion
func (d *Daemon) onPointerPos(x, y float64) {
	d.enqueue(func() { d.pipe.ForwardPointer(x, y) })
}

// onPhysicalClick is the safety contract: a physical click while a
// toggle is held force-releases everything
func (d *Daemon) onPhysicalClick(button string, down bool) {
	if !down {
		return
	}
	d.enqueue(func() {
		if len(d.pipe.ForceReleaseAll()) > 0 {
			log.Warn("physical click during held toggle, released all", "button", button)
			d.web.AddLog("action", "Physical click detected, released held actions")
		}
	})
}

// releaseAll force-releases all held toggles
func (d *Daemon) releaseAll() {
	d.pipe.ForceReleaseAll()
}
