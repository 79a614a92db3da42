package expression

import (
	"github.com/facepilot/facepilot/pkg/metrics"
)

// Fixed normalization constants. These are not user-tunable: the pucker
// multiplier, mouth-direction sensitivity and the lips-pressed reference
// were chosen empirically and hold across users.
const (
	puckerGain       = 2.0
	mouthSensitivity = 20.0
	mouthDeadzone    = 0.01
	lipsPressedRef   = 0.05

	// Fallbacks used when the baseline field is zero (uncalibrated).
	defaultBrowOffset = 0.04
	defaultSquintBase = 0.15

	// Floor for the eye baseline divisor.
	minEyeBaseline = 0.01
)

// Baseline is the neutral profile captured during calibration: one scalar
// per raw metric, used as the zero-point for normalization. Written only
// by a completed calibration cycle.
type Baseline struct {
	EyeOpen      float64 `yaml:"eye_open" json:"eye_open"`
	LipHeight    float64 `yaml:"lip_height" json:"lip_height"`
	LipWidth     float64 `yaml:"lip_width" json:"lip_width"`
	Ratio        float64 `yaml:"ratio" json:"ratio"`
	MouthDiff    float64 `yaml:"mouth_diff" json:"mouth_diff"`
	BrowDistance float64 `yaml:"brow_distance" json:"brow_distance"`
	SquintGap    float64 `yaml:"squint_gap" json:"squint_gap"`
}

// Gains are the user-tunable multipliers controlling how quickly a
// channel reaches 1.0 past its baseline
type Gains struct {
	Height float64 `yaml:"height" json:"height"` // mouth-open slope
	Width  float64 `yaml:"width" json:"width"`   // smile slope
	Brow   float64 `yaml:"brow" json:"brow"`     // eyebrow-raise and squint slope
}

// Normalize converts a raw metric bundle into per-channel intensities.
// Every output value is clamped to [0,1].
func Normalize(raw metrics.Raw, b Baseline, g Gains) State {
	state := State{
		EyeClosedLeft:  eyeOpenness(raw.EyeOpenLeft, b.EyeOpen),
		EyeClosedRight: eyeOpenness(raw.EyeOpenRight, b.EyeOpen),
		MouthOpen:      clamp((raw.InnerLipHeight-b.LipHeight)*g.Height, 0, 1),
		Smile:          clamp((raw.OuterLipWidth-b.LipWidth)*g.Width, 0, 1),
		LipsPressed:    clamp(1-raw.InnerLipHeight/lipsPressedRef, 0, 1),
	}

	if raw.OuterLipWidth > 0 {
		state[Pucker] = clamp((raw.HeightWidthRatio-b.Ratio)*puckerGain, 0, 1)
	} else {
		state[Pucker] = 0
	}

	state[MouthLeft], state[MouthRight] = mouthDirection(raw, b)

	browOffset := b.BrowDistance
	if browOffset == 0 {
		browOffset = defaultBrowOffset
	}
	state[EyebrowRaise] = clamp(max0(raw.BrowEyeDistance-browOffset)*g.Brow, 0, 1)

	squintBase := b.SquintGap
	if squintBase == 0 {
		squintBase = defaultSquintBase
	}
	state[Squint] = clamp(max0(squintBase-raw.SquintGap)*g.Brow, 0, 1)

	return state
}

// eyeOpenness is 1.0 at baseline and drops toward 0 as the eye closes
func eyeOpenness(raw, baseline float64) float64 {
	if baseline < minEyeBaseline {
		baseline = minEyeBaseline
	}
	return clamp(raw/baseline, 0, 1)
}

// mouthDirection maps the left/right lip-to-nose distance difference onto
// the mouthLeft/mouthRight channels. Positive diff (right distance larger)
// reads as "mouth moved left" — this polarity was chosen empirically
// during calibration; do not invert it.
func mouthDirection(raw metrics.Raw, b Baseline) (left, right float64) {
	diff := (raw.MouthDistRight - raw.MouthDistLeft) - b.MouthDiff
	switch {
	case diff > mouthDeadzone:
		return clamp((diff-mouthDeadzone)*mouthSensitivity, 0, 1), 0
	case diff < -mouthDeadzone:
		return 0, clamp((-diff-mouthDeadzone)*mouthSensitivity, 0, 1)
	default:
		return 0, 0
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// clamp limits a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
