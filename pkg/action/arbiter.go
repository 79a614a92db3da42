package action

import (
	"github.com/facepilot/facepilot/internal/log"
)

// ScalingMode selects how continuous actions derive their magnitude.
// Both observed variants of the mapper are supported; which one feels
// right is a per-user choice.
type ScalingMode string

const (
	// ScaleFlat issues continuous actions at full speed while active.
	ScaleFlat ScalingMode = "flat"

	// ScaleProportional scales speed by how far the driving value
	// exceeds its threshold, relative to IntensityRange.
	ScaleProportional ScalingMode = "proportional"
)

// Config holds the arbiter's tunable parameters
type Config struct {
	// Cooldowns (seconds) between repeated fires of the same discrete action
	KeyCooldown   float64
	ClickCooldown float64

	// Continuous action scaling
	Scaling        ScalingMode
	IntensityRange float64 // Proportional mode reaches full speed at threshold + this
	PointerSpeed   float64 // Pixels per frame at full intensity
	ScrollSpeed    float64 // Wheel units per frame at full intensity
	MinSpeed       float64 // Floor for a continuous magnitude
	MaxSpeed       float64 // Ceiling for a continuous magnitude

	// DragButton is the button held by the drag toggle
	DragButton string
}

// DefaultConfig returns the recommended arbiter configuration
func DefaultConfig() Config {
	return Config{
		KeyCooldown:   0.5,  // Keys repeat at most twice per second
		ClickCooldown: 0.12, // Clicks settle just above typical frame jitter

		Scaling:        ScaleProportional,
		IntensityRange: 0.5, // Full speed at threshold + 0.5
		PointerSpeed:   12,
		ScrollSpeed:    3,
		MinSpeed:       1,
		MaxSpeed:       25,

		DragButton: ButtonLeft,
	}
}

// Input is one logically-active action for the current frame, with the
// channel value and threshold that drive it
type Input struct {
	Action    ID
	Value     float64
	Threshold float64
}

// Arbiter converts the per-frame active-action set into actuator calls.
// Discrete actions fire on rising edges with cooldowns, continuous
// actions re-issue every active frame, toggles flip a held state.
// Single-writer: Update is called once per frame by the pipeline.
type Arbiter struct {
	cfg Config
	act Actuator

	prevActive map[ID]bool
	cooldown   map[ID]float64
	dragHeld   bool
}

// New creates an arbiter dispatching to the given actuator
func New(cfg Config, act Actuator) *Arbiter {
	if cfg.DragButton == "" {
		cfg.DragButton = ButtonLeft
	}
	return &Arbiter{
		cfg:        cfg,
		act:        act,
		prevActive: make(map[ID]bool),
		cooldown:   make(map[ID]float64),
	}
}

// Update processes one frame's active actions. dt is the elapsed
// wall-clock time since the previous frame in seconds. Returns the
// events emitted this frame.
func (a *Arbiter) Update(inputs []Input, dt float64) []Event {
	if dt < 0 {
		dt = 0
	}

	// Cooldowns are additive over wall-clock time, so a dropped frame
	// cannot extend them
	for id, remaining := range a.cooldown {
		remaining -= dt
		if remaining <= 0 {
			delete(a.cooldown, id)
		} else {
			a.cooldown[id] = remaining
		}
	}

	activeNow := make(map[ID]bool, len(inputs))
	var events []Event

	for _, in := range inputs {
		if in.Action == None || activeNow[in.Action] {
			continue
		}
		activeNow[in.Action] = true
		rising := !a.prevActive[in.Action]

		switch in.Action.Kind() {
		case KindContinuous:
			if ev, ok := a.fireContinuous(in); ok {
				events = append(events, ev)
			}

		case KindDiscrete:
			if !rising {
				continue
			}
			if _, cooling := a.cooldown[in.Action]; cooling {
				continue
			}
			if ev, ok := a.fireDiscrete(in.Action); ok {
				events = append(events, ev)
			}

		case KindToggle:
			if !rising {
				continue
			}
			events = append(events, a.flipDrag())
		}
	}

	a.prevActive = activeNow
	return events
}

// fireContinuous issues one frame's worth of a continuous action
func (a *Arbiter) fireContinuous(in Input) (Event, bool) {
	intensity := 1.0
	if a.cfg.Scaling == ScaleProportional && a.cfg.IntensityRange > 0 {
		intensity = clampF((in.Value-in.Threshold)/a.cfg.IntensityRange, 0, 1)
	}

	base := a.cfg.PointerSpeed
	if in.Action == ScrollUp || in.Action == ScrollDown {
		base = a.cfg.ScrollSpeed
	}
	magnitude := clampF(base*intensity, a.cfg.MinSpeed, a.cfg.MaxSpeed)

	var err error
	switch in.Action {
	case MoveLeft:
		err = a.act.MoveRelative(-magnitude, 0)
	case MoveRight:
		err = a.act.MoveRelative(magnitude, 0)
	case MoveUp:
		err = a.act.MoveRelative(0, -magnitude)
	case MoveDown:
		err = a.act.MoveRelative(0, magnitude)
	case ScrollUp:
		err = a.act.Scroll(0, magnitude)
	case ScrollDown:
		err = a.act.Scroll(0, -magnitude)
	default:
		return Event{}, false
	}
	if err != nil {
		log.Warn("actuator call failed", "action", in.Action, "err", err)
	}

	return Event{Kind: KindContinuous, Action: in.Action, Intensity: intensity}, true
}

// fireDiscrete fires a discrete action once and starts its cooldown
func (a *Arbiter) fireDiscrete(id ID) (Event, bool) {
	var err error
	cooldown := a.cfg.ClickCooldown

	switch {
	case id == LeftClick:
		err = a.click(ButtonLeft)
	case id == RightClick:
		err = a.click(ButtonRight)
	case id == MiddleClick:
		err = a.click(ButtonMiddle)
	case id == DoubleClick:
		if err = a.click(ButtonLeft); err == nil {
			err = a.click(ButtonLeft)
		}
	case id.KeyCode() != "":
		cooldown = a.cfg.KeyCooldown
		err = a.act.Key(id.KeyCode(), nil)
	default:
		// Unknown action id from a hand-edited profile; ignore
		return Event{}, false
	}

	if err != nil {
		log.Warn("actuator call failed", "action", id, "err", err)
	}

	a.cooldown[id] = cooldown
	return Event{Kind: KindDiscrete, Action: id, Intensity: 1}, true
}

func (a *Arbiter) click(button string) error {
	if err := a.act.Click(button, true); err != nil {
		return err
	}
	return a.act.Click(button, false)
}

// flipDrag toggles the press-and-hold drag state
func (a *Arbiter) flipDrag() Event {
	a.dragHeld = !a.dragHeld
	if err := a.act.Click(a.cfg.DragButton, a.dragHeld); err != nil {
		log.Warn("actuator call failed", "action", DragToggle, "err", err)
	}

	intensity := 0.0
	if a.dragHeld {
		intensity = 1
	}
	return Event{Kind: KindToggle, Action: DragToggle, Intensity: intensity}
}

// SetScaling switches the continuous intensity mode at runtime
func (a *Arbiter) SetScaling(mode ScalingMode) {
	if mode != "" {
		a.cfg.Scaling = mode
	}
}

// DragHeld reports whether the drag toggle is engaged
func (a *Arbiter) DragHeld() bool {
	return a.dragHeld
}

// ForwardPointer forwards a pointer-movement sample from the environment
// as a drag event while the drag toggle is held
func (a *Arbiter) ForwardPointer(x, y float64) {
	if !a.dragHeld {
		return
	}
	if err := a.act.Drag(x, y, a.cfg.DragButton); err != nil {
		log.Warn("drag forward failed", "err", err)
	}
}

// ForceReleaseAll releases every held toggle and clears edge and
// cooldown state. An external monitor invokes this when it observes a
// physical click while a toggle is held, so no button can stay stuck.
func (a *Arbiter) ForceReleaseAll() []Event {
	var events []Event

	if a.dragHeld {
		a.dragHeld = false
		if err := a.act.Click(a.cfg.DragButton, false); err != nil {
			log.Warn("force release failed", "err", err)
		}
		events = append(events, Event{Kind: KindToggle, Action: DragToggle, Intensity: 0})
	}

	a.prevActive = make(map[ID]bool)
	a.cooldown = make(map[ID]float64)
	return events
}

func clampF(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
