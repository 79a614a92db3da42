package action

import "github.com/facepilot/facepilot/internal/log"

// Mouse buttons
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Actuator is the abstract input-synthesis backend. Implementations must
// tag every emitted event with the synthetic-origin marker so a safety
// monitor can filter facepilot's own output out of real-input observation.
type Actuator interface {
	// MoveRelative moves the pointer by a pixel delta
	MoveRelative(dx, dy float64) error

	// Scroll scrolls by the given wheel delta
	Scroll(dx, dy float64) error

	// Click presses (down=true) or releases (down=false) a button
	Click(button string, down bool) error

	// Key presses a key with optional modifiers
	Key(code string, modifiers []string) error

	// Drag moves the pointer to an absolute position with a button held
	Drag(x, y float64, button string) error
}

// Recorder is an Actuator that records every call. Test double.
type Recorder struct {
	Calls []Call
}

// Call is one recorded actuator invocation
type Call struct {
	Op     string // "move", "scroll", "click", "key", "drag"
	Button string
	Down   bool
	Code   string
	DX, DY float64
	X, Y   float64
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) MoveRelative(dx, dy float64) error {
	r.Calls = append(r.Calls, Call{Op: "move", DX: dx, DY: dy})
	return nil
}

func (r *Recorder) Scroll(dx, dy float64) error {
	r.Calls = append(r.Calls, Call{Op: "scroll", DX: dx, DY: dy})
	return nil
}

func (r *Recorder) Click(button string, down bool) error {
	r.Calls = append(r.Calls, Call{Op: "click", Button: button, Down: down})
	return nil
}

func (r *Recorder) Key(code string, modifiers []string) error {
	r.Calls = append(r.Calls, Call{Op: "key", Code: code})
	return nil
}

func (r *Recorder) Drag(x, y float64, button string) error {
	r.Calls = append(r.Calls, Call{Op: "drag", X: x, Y: y, Button: button})
	return nil
}

// CountOp returns how many recorded calls have the given op
func (r *Recorder) CountOp(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards recorded calls
func (r *Recorder) Reset() {
	r.Calls = nil
}

// DryRun is an Actuator that only logs. Used with --dry-run to tune
// thresholds without emitting real input.
type DryRun struct{}

func (DryRun) MoveRelative(dx, dy float64) error {
	log.Debug("dry-run move", "dx", dx, "dy", dy)
	return nil
}

func (DryRun) Scroll(dx, dy float64) error {
	log.Debug("dry-run scroll", "dx", dx, "dy", dy)
	return nil
}

func (DryRun) Click(button string, down bool) error {
	log.Info("dry-run click", "button", button, "down", down)
	return nil
}

func (DryRun) Key(code string, modifiers []string) error {
	log.Info("dry-run key", "code", code, "modifiers", modifiers)
	return nil
}

func (DryRun) Drag(x, y float64, button string) error {
	log.Debug("dry-run drag", "x", x, "y", y, "button", button)
	return nil
}
