package expression

// MaxSmoothing caps the EMA factor: above 0.95 the output would barely
// move between frames.
const MaxSmoothing = 0.95

// Smoother applies per-channel exponential smoothing frame to frame.
// smoothed = (1-factor)*new + factor*previous. Stateful: one previous
// value per channel, updated every frame.
type Smoother struct {
	factor float64
	prev   State
}

// NewSmoother creates a smoother with the given factor, clamped to [0, 0.95]
func NewSmoother(factor float64) *Smoother {
	s := &Smoother{}
	s.SetFactor(factor)
	return s
}

// SetFactor updates the smoothing factor, clamped to [0, 0.95]
func (s *Smoother) SetFactor(factor float64) {
	s.factor = clamp(factor, 0, MaxSmoothing)
}

// Factor returns the current smoothing factor
func (s *Smoother) Factor() float64 {
	return s.factor
}

// Smooth blends the new state with the previous smoothed state.
// The first frame passes through unchanged.
func (s *Smoother) Smooth(current State) State {
	if s.prev == nil {
		s.prev = current.Clone()
		return current
	}

	out := make(State, len(current))
	for ch, v := range current {
		out[ch] = (1-s.factor)*v + s.factor*s.prev[ch]
	}
	s.prev = out.Clone()
	return out
}

// Reset discards the smoothing history
func (s *Smoother) Reset() {
	s.prev = nil
}
