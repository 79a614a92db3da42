package expression

import (
	"math"
	"testing"

	"github.com/facepilot/facepilot/pkg/metrics"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestNormalize_MouthOpen(t *testing.T) {
	raw := metrics.Raw{InnerLipHeight: 0.14}
	b := Baseline{LipHeight: 0.08}
	g := Gains{Height: 10}

	state := Normalize(raw, b, g)

	if !floatEquals(state[MouthOpen], 0.6) {
		t.Errorf("MouthOpen = %v, want 0.6", state[MouthOpen])
	}
}

func TestNormalize_MouthOpenClamped(t *testing.T) {
	raw := metrics.Raw{InnerLipHeight: 0.5}
	state := Normalize(raw, Baseline{LipHeight: 0.08}, Gains{Height: 10})

	if state[MouthOpen] != 1.0 {
		t.Errorf("MouthOpen = %v, want clamped 1.0", state[MouthOpen])
	}
}

func TestNormalize_EyeOpenness(t *testing.T) {
	raw := metrics.Raw{EyeOpenLeft: 0.16, EyeOpenRight: 0.4}
	state := Normalize(raw, Baseline{EyeOpen: 0.4}, Gains{})

	if !floatEquals(state[EyeClosedLeft], 0.4) {
		t.Errorf("EyeClosedLeft = %v, want 0.4", state[EyeClosedLeft])
	}
	if !floatEquals(state[EyeClosedRight], 1.0) {
		t.Errorf("EyeClosedRight = %v, want 1.0", state[EyeClosedRight])
	}
}

func TestNormalize_EyeBaselineFloor(t *testing.T) {
	// A near-zero baseline must not blow the division up
	raw := metrics.Raw{EyeOpenLeft: 0.005}
	state := Normalize(raw, Baseline{EyeOpen: 0.0001}, Gains{})

	if !floatEquals(state[EyeClosedLeft], 0.5) {
		t.Errorf("EyeClosedLeft = %v, want 0.5 (floored baseline)", state[EyeClosedLeft])
	}
}

func TestNormalize_MouthDirection(t *testing.T) {
	tests := []struct {
		name        string
		left, right float64
		baseDiff    float64
		wantLeft    float64
		wantRight   float64
	}{
		{
			// diff 0.08, past deadzone: (0.08-0.01)*20 = 1.4, clamped
			name: "strong left", left: 0.10, right: 0.18, wantLeft: 1.0,
		},
		{
			// diff 0.04: (0.04-0.01)*20 = 0.6
			name: "moderate left", left: 0.12, right: 0.16, wantLeft: 0.6,
		},
		{
			// diff -0.04 mirrors to the right channel
			name: "moderate right", left: 0.16, right: 0.12, wantRight: 0.6,
		},
		{
			// inside the deadzone nothing registers
			name: "deadzone", left: 0.15, right: 0.155,
		},
		{
			// calibrated asymmetry shifts the zero point
			name: "baseline offset", left: 0.12, right: 0.16, baseDiff: 0.04,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := metrics.Raw{MouthDistLeft: tt.left, MouthDistRight: tt.right}
			state := Normalize(raw, Baseline{MouthDiff: tt.baseDiff}, Gains{})

			if !floatEquals(state[MouthLeft], tt.wantLeft) {
				t.Errorf("MouthLeft = %v, want %v", state[MouthLeft], tt.wantLeft)
			}
			if !floatEquals(state[MouthRight], tt.wantRight) {
				t.Errorf("MouthRight = %v, want %v", state[MouthRight], tt.wantRight)
			}
		})
	}
}

func TestNormalize_Smile(t *testing.T) {
	raw := metrics.Raw{OuterLipWidth: 0.36}
	state := Normalize(raw, Baseline{LipWidth: 0.3}, Gains{Width: 10})

	if !floatEquals(state[Smile], 0.6) {
		t.Errorf("Smile = %v, want 0.6", state[Smile])
	}
}

func TestNormalize_Pucker(t *testing.T) {
	raw := metrics.Raw{OuterLipWidth: 0.2, HeightWidthRatio: 0.5}
	state := Normalize(raw, Baseline{Ratio: 0.2}, Gains{})

	if !floatEquals(state[Pucker], 0.6) {
		t.Errorf("Pucker = %v, want 0.6", state[Pucker])
	}
}

func TestNormalize_PuckerZeroWidth(t *testing.T) {
	raw := metrics.Raw{OuterLipWidth: 0, HeightWidthRatio: 0}
	state := Normalize(raw, Baseline{Ratio: 0.2}, Gains{})

	if state[Pucker] != 0 {
		t.Errorf("Pucker = %v, want 0 for zero mouth width", state[Pucker])
	}
}

func TestNormalize_LipsPressed(t *testing.T) {
	state := Normalize(metrics.Raw{InnerLipHeight: 0.02}, Baseline{}, Gains{})
	if !floatEquals(state[LipsPressed], 0.6) {
		t.Errorf("LipsPressed = %v, want 0.6", state[LipsPressed])
	}

	state = Normalize(metrics.Raw{InnerLipHeight: 0.1}, Baseline{}, Gains{})
	if state[LipsPressed] != 0 {
		t.Errorf("LipsPressed = %v, want 0 for open lips", state[LipsPressed])
	}
}

func TestNormalize_EyebrowRaise(t *testing.T) {
	// Uncalibrated baseline falls back to the default offset
	raw := metrics.Raw{BrowEyeDistance: 0.1}
	state := Normalize(raw, Baseline{}, Gains{Brow: 5})

	if !floatEquals(state[EyebrowRaise], 0.3) {
		t.Errorf("EyebrowRaise = %v, want 0.3", state[EyebrowRaise])
	}

	// Calibrated baseline replaces the default
	state = Normalize(raw, Baseline{BrowDistance: 0.08}, Gains{Brow: 5})
	if !floatEquals(state[EyebrowRaise], 0.1) {
		t.Errorf("EyebrowRaise = %v, want 0.1", state[EyebrowRaise])
	}
}

func TestNormalize_Squint(t *testing.T) {
	// Narrower gap than the base reads as squinting
	raw := metrics.Raw{SquintGap: 0.05}
	state := Normalize(raw, Baseline{}, Gains{Brow: 5})

	if !floatEquals(state[Squint], 0.5) {
		t.Errorf("Squint = %v, want 0.5", state[Squint])
	}

	// Wider than base never goes negative
	state = Normalize(metrics.Raw{SquintGap: 0.3}, Baseline{}, Gains{Brow: 5})
	if state[Squint] != 0 {
		t.Errorf("Squint = %v, want 0 for wide gap", state[Squint])
	}
}

func TestNormalize_AllChannelsInRange(t *testing.T) {
	raw := metrics.Raw{
		EyeOpenLeft:      5,
		EyeOpenRight:     -1,
		InnerLipHeight:   2,
		OuterLipWidth:    0.001,
		HeightWidthRatio: 2000,
		BrowEyeDistance:  10,
		SquintGap:        -10,
		MouthDistLeft:    0,
		MouthDistRight:   10,
	}
	state := Normalize(raw, Baseline{}, Gains{Height: 100, Width: 100, Brow: 100})

	for _, ch := range Channels() {
		v := state[ch]
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want value in [0,1]", ch, v)
		}
	}
}
