package expression

import (
	"time"

	"github.com/facepilot/facepilot/pkg/metrics"
)

// CalibrationWindow is how long the user holds a relaxed face while the
// calibrator accumulates samples.
const CalibrationWindow = 3 * time.Second

// CalibrationState is the calibrator's lifecycle state
type CalibrationState int

const (
	Uncalibrated CalibrationState = iota
	Calibrating
	Calibrated
)

// String returns the state name
func (s CalibrationState) String() string {
	switch s {
	case Calibrating:
		return "calibrating"
	case Calibrated:
		return "calibrated"
	default:
		return "uncalibrated"
	}
}

// Calibrator accumulates raw metric samples over a fixed window and
// derives the neutral baseline. The window timer only starts once a frame
// with landmarks has been observed, so calibration started with no face
// present simply waits. A restart discards in-flight samples.
type Calibrator struct {
	state  CalibrationState
	window time.Duration

	started bool
	start   time.Time
	count   int
	sum     calibSums
}

type calibSums struct {
	eyeOpen   float64
	lipHeight float64
	lipWidth  float64
	mouthDiff float64
	browDist  float64
	squintGap float64
}

// NewCalibrator creates a calibrator with the standard window
func NewCalibrator() *Calibrator {
	return &Calibrator{window: CalibrationWindow}
}

// State returns the current calibration state
func (c *Calibrator) State() CalibrationState {
	return c.state
}

// Start begins (or restarts) a calibration cycle, discarding any
// in-flight samples
func (c *Calibrator) Start() {
	c.state = Calibrating
	c.started = false
	c.count = 0
	c.sum = calibSums{}
}

// Observe feeds one raw sample from a frame with landmarks. When the
// window elapses it derives the baseline, transitions to Calibrated and
// returns (baseline, true). Outside a calibration cycle it is a no-op.
func (c *Calibrator) Observe(raw metrics.Raw, now time.Time) (Baseline, bool) {
	if c.state != Calibrating {
		return Baseline{}, false
	}

	if !c.started {
		c.started = true
		c.start = now
	}

	c.sum.eyeOpen += (raw.EyeOpenLeft + raw.EyeOpenRight) / 2
	c.sum.lipHeight += raw.InnerLipHeight
	c.sum.lipWidth += raw.OuterLipWidth
	c.sum.mouthDiff += raw.MouthDistRight - raw.MouthDistLeft
	c.sum.browDist += raw.BrowEyeDistance
	c.sum.squintGap += raw.SquintGap
	c.count++

	if now.Sub(c.start) < c.window {
		return Baseline{}, false
	}

	n := float64(c.count)
	baseline := Baseline{
		EyeOpen:      c.sum.eyeOpen / n,
		LipHeight:    c.sum.lipHeight / n,
		LipWidth:     c.sum.lipWidth / n,
		MouthDiff:    c.sum.mouthDiff / n,
		BrowDistance: c.sum.browDist / n,
		SquintGap:    c.sum.squintGap / n,
	}
	if baseline.LipWidth > 0 {
		baseline.Ratio = baseline.LipHeight / baseline.LipWidth
	}

	c.state = Calibrated
	return baseline, true
}
