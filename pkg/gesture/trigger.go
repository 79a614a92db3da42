// Package gesture decides when a normalized expression becomes an
// intentional gesture: per-channel thresholds with hold-duration gating,
// and two-channel combos with their own debounce window.
package gesture

import (
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
)

// holdEpsilon absorbs float accumulation error at the hold boundary
const holdEpsilon = 1e-9

// Trigger configures one channel's threshold behavior
type Trigger struct {
	// Threshold in [0,1]; out-of-range values are clamped at evaluation.
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// Below inverts the trigger direction: active while value < threshold.
	// Used by the eye channels, where closing drives the value down.
	Below bool `yaml:"below" json:"below"`

	// HoldDuration is the minimum continuous time in seconds the condition
	// must stay true before the channel counts as an intentional gesture.
	HoldDuration float64 `yaml:"hold_duration" json:"hold_duration"`

	// Action fired when the channel is met. Empty means observe-only.
	Action action.ID `yaml:"action" json:"action"`

	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Status is one channel's evaluation result for a frame
type Status struct {
	Value  float64 // Smoothed intensity
	Active bool    // Raw threshold condition this frame; Enabled does not gate it
	Met    bool    // Enabled, active and held long enough to drive an action
}

// Evaluator maintains one hold timer per channel. A timer starts at zero
// on the rising edge, accumulates elapsed frame time while the condition
// stays true, and resets to zero the instant it goes false.
type Evaluator struct {
	hold   map[expression.Channel]float64
	active map[expression.Channel]bool
}

// NewEvaluator creates an evaluator with all timers at zero
func NewEvaluator() *Evaluator {
	return &Evaluator{
		hold:   make(map[expression.Channel]float64),
		active: make(map[expression.Channel]bool),
	}
}

// Evaluate runs every configured channel against the frame's state.
// dt is the elapsed wall-clock time since the previous frame in seconds.
func (e *Evaluator) Evaluate(state expression.State, triggers map[expression.Channel]Trigger, dt float64) map[expression.Channel]Status {
	if dt < 0 {
		dt = 0
	}

	out := make(map[expression.Channel]Status, len(triggers))
	for _, ch := range expression.Channels() {
		trig, ok := triggers[ch]
		if !ok {
			continue
		}

		value := state[ch]

		// The threshold condition is computed regardless of Enabled so
		// that observe-only channels can still participate in combos.
		// Enabled gates only single-channel action dispatch via Met.
		active := isActive(ch, state, trig)

		if active {
			if e.active[ch] {
				e.hold[ch] += dt
			} else {
				e.hold[ch] = 0
			}
		} else {
			e.hold[ch] = 0
		}
		e.active[ch] = active

		holdDuration := trig.HoldDuration
		if holdDuration < 0 {
			holdDuration = 0
		}

		out[ch] = Status{
			Value:  value,
			Active: active,
			Met:    trig.Enabled && active && e.hold[ch]+holdEpsilon >= holdDuration,
		}
	}
	return out
}

// Reset clears all hold timers, e.g. on a profile switch
func (e *Evaluator) Reset() {
	e.hold = make(map[expression.Channel]float64)
	e.active = make(map[expression.Channel]bool)
}

// isActive evaluates the raw threshold condition. Eye-closed channels are
// special: either eye satisfying the threshold activates the trigger, so
// a one-eyed blink still registers.
func isActive(ch expression.Channel, state expression.State, trig Trigger) bool {
	threshold := clamp(trig.Threshold, 0, 1)

	if ch == expression.EyeClosedLeft || ch == expression.EyeClosedRight {
		return satisfies(state[expression.EyeClosedLeft], threshold, trig.Below) ||
			satisfies(state[expression.EyeClosedRight], threshold, trig.Below)
	}
	return satisfies(state[ch], threshold, trig.Below)
}

func satisfies(value, threshold float64, below bool) bool {
	if below {
		return value < threshold
	}
	return value > threshold
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
