// Package pipeline composes the per-frame processing path: metric
// extraction, calibration, normalization, smoothing, trigger evaluation,
// combo resolution and action arbitration. One Process call per landmark
// frame, invoked sequentially by the caller; the pipeline performs no
// internal threading and must not be re-entered concurrently.
package pipeline

import (
	"time"

	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/gesture"
	"github.com/facepilot/facepilot/pkg/landmark"
	"github.com/facepilot/facepilot/pkg/metrics"
	"github.com/facepilot/facepilot/pkg/profile"
)

// Result is what one Process call produces: the latest expression state
// plus the action events emitted this frame. Consumers poll or subscribe
// via plain callbacks; there is no implicit broadcast.
type Result struct {
	State       expression.State
	Events      []action.Event
	Calibration expression.CalibrationState

	// Skipped is true when the frame carried no landmarks; all timers
	// and state are preserved.
	Skipped bool
}

// Pipeline is the per-frame processing object. Its lifetime is owned by
// the caller; no process-wide singletons.
type Pipeline struct {
	prof *profile.Profile

	calibrator *expression.Calibrator
	smoother   *expression.Smoother
	evaluator  *gesture.Evaluator
	resolver   *gesture.Resolver
	arbiter    *action.Arbiter

	last    time.Time
	hasLast bool
	state   expression.State

	// OnCalibrated is invoked with the freshly derived baseline after a
	// calibration cycle completes, for persistence. Optional.
	OnCalibrated func(expression.Baseline)
}

// New creates a pipeline processing frames against the given profile and
// dispatching actions to the given actuator
func New(prof *profile.Profile, arbCfg action.Config, act action.Actuator) *Pipeline {
	arbCfg.Scaling = scaling(prof, arbCfg.Scaling)
	return &Pipeline{
		prof:       prof,
		calibrator: expression.NewCalibrator(),
		smoother:   expression.NewSmoother(prof.Smoothing),
		evaluator:  gesture.NewEvaluator(),
		resolver:   gesture.NewResolver(),
		arbiter:    action.New(arbCfg, act),
		state:      expression.State{},
	}
}

// Process runs one landmark frame through the pipeline. now drives all
// timers; irregular or large deltas are tolerated because every timer is
// additive over wall-clock time.
func (p *Pipeline) Process(frame landmark.Frame, now time.Time) Result {
	dt := p.tick(now)

	// No face this tick: skip entirely, preserving timers and state
	if !frame.HasLandmarks() {
		return Result{State: p.state, Calibration: p.calibrator.State(), Skipped: true}
	}

	raw := metrics.Extract(frame)

	calibrating := p.calibrator.State() == expression.Calibrating
	if calibrating {
		if baseline, done := p.calibrator.Observe(raw, now); done {
			p.prof.Baseline = baseline
			calibrating = false
			log.Info("calibration complete",
				"eye_open", baseline.EyeOpen,
				"lip_height", baseline.LipHeight,
				"lip_width", baseline.LipWidth)
			if p.OnCalibrated != nil {
				p.OnCalibrated(baseline)
			}
		}
	}

	// During the calibration window the observer still sees un-baselined
	// values; only action triggering is disabled
	baseline := p.prof.Baseline
	if calibrating {
		baseline = expression.Baseline{}
	}

	p.smoother.SetFactor(p.prof.Smoothing)
	state := p.smoother.Smooth(expression.Normalize(raw, baseline, p.prof.Gains))
	p.state = state

	result := Result{State: state, Calibration: p.calibrator.State()}
	if calibrating {
		return result
	}

	status := p.evaluator.Evaluate(state, p.prof.Triggers, dt)
	comboAction, suppressed := p.resolver.Resolve(status, p.prof.Combos, dt)

	var inputs []action.Input
	if suppressed {
		// A recognized combo (or its grace window) owns the frame
		inputs = []action.Input{{Action: comboAction, Value: 1}}
	} else {
		for _, ch := range expression.Channels() {
			st, ok := status[ch]
			if !ok || !st.Met {
				continue
			}
			trig := p.prof.Triggers[ch]
			if trig.Action == action.None {
				continue
			}
			inputs = append(inputs, action.Input{
				Action:    trig.Action,
				Value:     st.Value,
				Threshold: trig.Threshold,
			})
		}
	}

	result.Events = p.arbiter.Update(inputs, dt)
	return result
}

// Calibrate starts (or restarts) a calibration cycle, discarding any
// in-flight samples
func (p *Pipeline) Calibrate() {
	p.calibrator.Start()
	log.Info("calibration started")
}

// Calibration returns the calibrator state
func (p *Pipeline) Calibration() expression.CalibrationState {
	return p.calibrator.State()
}

// State returns the latest expression state
func (p *Pipeline) State() expression.State {
	return p.state
}

// SetProfile swaps the active profile. Must be called between Process
// calls. Trigger and combo state is reset; a held drag is released so a
// profile switch can never leave a button stuck.
func (p *Pipeline) SetProfile(prof *profile.Profile) {
	p.prof = prof
	p.smoother.SetFactor(prof.Smoothing)
	p.arbiter.SetScaling(prof.Scaling)
	p.evaluator.Reset()
	p.resolver.Reset()
	p.arbiter.ForceReleaseAll()
}

// ForwardPointer forwards an environment pointer sample for drag
// forwarding while the drag toggle is held
func (p *Pipeline) ForwardPointer(x, y float64) {
	p.arbiter.ForwardPointer(x, y)
}

// DragHeld reports whether the drag toggle is engaged
func (p *Pipeline) DragHeld() bool {
	return p.arbiter.DragHeld()
}

// ForceReleaseAll releases all held toggles; see action.Arbiter
func (p *Pipeline) ForceReleaseAll() []action.Event {
	return p.arbiter.ForceReleaseAll()
}

// tick advances the frame clock and returns dt in seconds
func (p *Pipeline) tick(now time.Time) float64 {
	if !p.hasLast {
		p.last = now
		p.hasLast = true
		return 0
	}
	dt := now.Sub(p.last).Seconds()
	p.last = now
	if dt < 0 {
		dt = 0
	}
	return dt
}

func scaling(prof *profile.Profile, fallback action.ScalingMode) action.ScalingMode {
	if prof.Scaling != "" {
		return prof.Scaling
	}
	if fallback != "" {
		return fallback
	}
	return action.ScaleProportional
}
