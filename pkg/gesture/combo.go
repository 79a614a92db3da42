package gesture

import (
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
)

// ComboGrace is the debounce window in seconds: after a combo's AND
// condition breaks, its action is sustained this long before clearing.
// The countdown counts down strictly with elapsed wall-clock time and
// never exceeds this ceiling.
const ComboGrace = 0.15

// Combo maps a logical AND of two channels to one action. Combos use
// their own debounce instead of per-channel hold gating.
type Combo struct {
	Primary   expression.Channel `yaml:"primary" json:"primary"`
	Secondary expression.Channel `yaml:"secondary" json:"secondary"`
	Action    action.ID          `yaml:"action" json:"action"`
	Enabled   bool               `yaml:"enabled" json:"enabled"`
}

// Resolver detects combos and owns the debounce countdown. While a combo
// is detected or its grace window is still running, single-channel
// evaluation is suppressed.
type Resolver struct {
	active action.ID
	grace  float64
}

// NewResolver creates a resolver with no remembered combo
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve checks every enabled combo against this frame's channel status.
// Combos are evaluated in slice order so the last detected combo is the
// one remembered. Returns the sustained action and whether single-channel
// triggers are suppressed this frame.
func (r *Resolver) Resolve(status map[expression.Channel]Status, combos []Combo, dt float64) (action.ID, bool) {
	if dt < 0 {
		dt = 0
	}

	detected := action.None
	for _, combo := range combos {
		if !combo.Enabled || combo.Action == action.None {
			continue
		}
		if status[combo.Primary].Active && status[combo.Secondary].Active {
			detected = combo.Action
		}
	}

	if detected != action.None {
		r.active = detected
		r.grace = ComboGrace
		return r.active, true
	}

	if r.grace > 0 {
		r.grace -= dt
		if r.grace > 0 {
			// Sustain the last combo's action through the grace window
			return r.active, true
		}
		r.grace = 0
		r.active = action.None
	}

	return action.None, false
}

// Active returns the currently sustained combo action, if any
func (r *Resolver) Active() action.ID {
	return r.active
}

// Reset clears the remembered combo and its countdown
func (r *Resolver) Reset() {
	r.active = action.None
	r.grace = 0
}
