// Package profile owns the named configuration profiles: per-channel
// triggers, gains, combos and the calibrated baseline. Exactly one
// profile is active at a time; the pipeline reads it every frame and
// operator edits are applied only between frames.
package profile

import (
	"github.com/google/uuid"

	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/gesture"
)

// DefaultSmoothing is the EMA factor new profiles start with
const DefaultSmoothing = 0.3

// Profile is one named configuration set
type Profile struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Smoothing is the per-channel EMA factor in [0, 0.95]
	Smoothing float64 `yaml:"smoothing" json:"smoothing"`

	// Scaling selects flat or proportional continuous-action intensity
	Scaling action.ScalingMode `yaml:"scaling" json:"scaling"`

	Gains    expression.Gains    `yaml:"gains" json:"gains"`
	Baseline expression.Baseline `yaml:"baseline" json:"baseline"`

	Triggers map[expression.Channel]gesture.Trigger `yaml:"triggers" json:"triggers"`
	Combos   []gesture.Combo                        `yaml:"combos" json:"combos"`
}

// Default returns a fresh profile with zero-valued thresholds and gains.
// The eye channels trigger below threshold; everything else above.
func Default(name string) *Profile {
	triggers := make(map[expression.Channel]gesture.Trigger, len(expression.Channels()))
	for _, ch := range expression.Channels() {
		triggers[ch] = gesture.Trigger{
			Below: ch == expression.EyeClosedLeft || ch == expression.EyeClosedRight,
		}
	}

	return &Profile{
		ID:        uuid.NewString(),
		Name:      name,
		Smoothing: DefaultSmoothing,
		Scaling:   action.ScaleProportional,
		Triggers:  triggers,
	}
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	out := *p
	out.Triggers = make(map[expression.Channel]gesture.Trigger, len(p.Triggers))
	for ch, trig := range p.Triggers {
		out.Triggers[ch] = trig
	}
	out.Combos = append([]gesture.Combo(nil), p.Combos...)
	return &out
}
