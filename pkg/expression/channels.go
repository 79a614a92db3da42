// Package expression converts raw facial metrics into normalized,
// smoothed per-channel intensities, and owns the calibration protocol
// that captures the neutral baseline.
package expression

// Channel names one facial expression's normalized intensity value
type Channel string

const (
	// EyeClosedLeft and EyeClosedRight report eye openness: 1.0 at the
	// calibrated baseline, dropping toward 0 as the eye closes. Triggers
	// on these channels fire below their threshold.
	EyeClosedLeft  Channel = "eye_closed_left"
	EyeClosedRight Channel = "eye_closed_right"

	MouthOpen    Channel = "mouth_open"
	Smile        Channel = "smile"
	Pucker       Channel = "pucker"
	MouthLeft    Channel = "mouth_left"
	MouthRight   Channel = "mouth_right"
	EyebrowRaise Channel = "eyebrow_raise"
	Squint       Channel = "squint"
	LipsPressed  Channel = "lips_pressed"
)

// Channels returns all channels in stable iteration order
func Channels() []Channel {
	return []Channel{
		EyeClosedLeft,
		EyeClosedRight,
		MouthOpen,
		Smile,
		Pucker,
		MouthLeft,
		MouthRight,
		EyebrowRaise,
		Squint,
		LipsPressed,
	}
}

// State holds the normalized intensity of every channel for one frame.
// All values are in [0,1].
type State map[Channel]float64

// Clone returns a copy of the state
func (s State) Clone() State {
	out := make(State, len(s))
	for ch, v := range s {
		out[ch] = v
	}
	return out
}
