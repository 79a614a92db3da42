// Package action converts logically-active trigger states into actuator
// calls: edge-triggered discrete actions with cooldowns, continuous
// actions re-issued every frame, and toggle actions for press-and-hold
// drag, with a global safety release.
package action

import "strings"

// Kind classifies how an action is dispatched
type Kind string

const (
	// KindDiscrete fires once per rising edge, then cools down.
	KindDiscrete Kind = "discrete"

	// KindContinuous is re-issued every frame the action is active.
	KindContinuous Kind = "continuous"

	// KindToggle flips a persistent held state on each rising edge.
	KindToggle Kind = "toggle"
)

// ID identifies an action. Key actions are parametric: "key:enter",
// "key:space" and so on.
type ID string

const (
	None ID = ""

	// Discrete
	LeftClick   ID = "left_click"
	RightClick  ID = "right_click"
	MiddleClick ID = "middle_click"
	DoubleClick ID = "double_click"

	// Toggle
	DragToggle ID = "drag_toggle"

	// Continuous
	ScrollUp   ID = "scroll_up"
	ScrollDown ID = "scroll_down"
	MoveLeft   ID = "move_left"
	MoveRight  ID = "move_right"
	MoveUp     ID = "move_up"
	MoveDown   ID = "move_down"
)

// All returns the built-in action IDs in a stable order. Parametric key
// actions are not enumerable and are excluded.
func All() []ID {
	return []ID{
		LeftClick, RightClick, MiddleClick, DoubleClick,
		DragToggle,
		ScrollUp, ScrollDown, MoveLeft, MoveRight, MoveUp, MoveDown,
	}
}

// keyPrefix marks parametric key-press actions
const keyPrefix = "key:"

// Key returns the action ID for pressing the given key code
func Key(code string) ID {
	return ID(keyPrefix + code)
}

// KeyCode returns the key code of a key action, or "" if id is not one
func (id ID) KeyCode() string {
	if strings.HasPrefix(string(id), keyPrefix) {
		return strings.TrimPrefix(string(id), keyPrefix)
	}
	return ""
}

// Kind returns how the action is dispatched. Unknown identifiers are
// treated as discrete so a typo can never hold a button down.
func (id ID) Kind() Kind {
	switch id {
	case ScrollUp, ScrollDown, MoveLeft, MoveRight, MoveUp, MoveDown:
		return KindContinuous
	case DragToggle:
		return KindToggle
	default:
		return KindDiscrete
	}
}

// Event describes one action emission for observers (dashboard, replay)
type Event struct {
	Kind      Kind    `json:"kind"`
	Action    ID      `json:"action"`
	Intensity float64 `json:"intensity,omitempty"`
}
