package profile

import (
	"errors"
	"testing"

	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/gesture"
)

func newTestManager(t *testing.T) (*Manager, *MemStore) {
	t.Helper()
	store := &MemStore{}
	m, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m, store
}

func TestManager_EmptyStoreGetsDefault(t *testing.T) {
	m, store := newTestManager(t)

	active := m.Active()
	if active == nil {
		t.Fatal("empty store should yield a default active profile")
	}
	if active.Name != "default" {
		t.Errorf("Name = %q, want default", active.Name)
	}
	if active.Smoothing != DefaultSmoothing {
		t.Errorf("Smoothing = %v, want %v", active.Smoothing, DefaultSmoothing)
	}
	if len(active.Triggers) != len(expression.Channels()) {
		t.Errorf("Triggers = %d entries, want one per channel", len(active.Triggers))
	}

	// The default is persisted immediately
	if store.Doc == nil || len(store.Doc.Profiles) != 1 {
		t.Error("default profile should be saved to the store")
	}
}

func TestManager_DefaultEyeTriggersBelow(t *testing.T) {
	m, _ := newTestManager(t)
	active := m.Active()

	for _, ch := range expression.Channels() {
		trig := active.Triggers[ch]
		eye := ch == expression.EyeClosedLeft || ch == expression.EyeClosedRight
		if trig.Below != eye {
			t.Errorf("%s: Below = %v, want %v", ch, trig.Below, eye)
		}
		if trig.Enabled {
			t.Errorf("%s: new profiles must start with triggers disabled", ch)
		}
	}
}

func TestManager_CreateSelectDelete(t *testing.T) {
	m, _ := newTestManager(t)
	first := m.Active()

	second, err := m.Create("work")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(m.Profiles()) != 2 {
		t.Fatalf("profiles = %d, want 2", len(m.Profiles()))
	}

	if err := m.Select(second.ID); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if m.Active().ID != second.ID {
		t.Error("Select should change the active profile")
	}

	// Deleting the active profile falls back to the first remaining
	if err := m.Delete(second.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m.Active().ID != first.ID {
		t.Error("deleting the active profile should activate the remaining one")
	}
}

func TestManager_DeleteLastProfile(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Delete(m.Active().ID)
	if !errors.Is(err, ErrLastProfile) {
		t.Errorf("Delete() error = %v, want ErrLastProfile", err)
	}
	if len(m.Profiles()) != 1 {
		t.Error("the last profile must survive")
	}
}

func TestManager_SelectUnknown(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Select("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Select() error = %v, want ErrNotFound", err)
	}
}

func TestManager_Rename(t *testing.T) {
	m, _ := newTestManager(t)
	id := m.Active().ID

	if err := m.Rename(id, "gaming"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if m.Active().Name != "gaming" {
		t.Errorf("Name = %q, want gaming", m.Active().Name)
	}

	if err := m.Rename("nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename() error = %v, want ErrNotFound", err)
	}
}

func TestManager_EditsApplyAtFrameBoundary(t *testing.T) {
	m, store := newTestManager(t)

	m.UpdateTrigger(expression.MouthOpen, gesture.Trigger{
		Threshold: 0.6,
		Action:    action.LeftClick,
		Enabled:   true,
	})

	// Queued but not yet applied
	if m.Active().Triggers[expression.MouthOpen].Enabled {
		t.Fatal("edit must not land before ApplyPending")
	}

	if !m.ApplyPending() {
		t.Fatal("ApplyPending should report the queued edit")
	}
	trig := m.Active().Triggers[expression.MouthOpen]
	if !trig.Enabled || trig.Threshold != 0.6 || trig.Action != action.LeftClick {
		t.Errorf("trigger = %+v, want the queued edit applied", trig)
	}

	// Applied edits are persisted
	stored := findProfile(store.Doc, m.Active().ID)
	if stored.Triggers[expression.MouthOpen].Threshold != 0.6 {
		t.Error("applied edit should be persisted")
	}

	if m.ApplyPending() {
		t.Error("ApplyPending with an empty queue should report false")
	}
}

func TestManager_ComboEdits(t *testing.T) {
	m, _ := newTestManager(t)

	m.AddCombo(gesture.Combo{
		Primary:   expression.Smile,
		Secondary: expression.MouthOpen,
		Action:    action.RightClick,
		Enabled:   true,
	})
	m.ApplyPending()

	if len(m.Active().Combos) != 1 {
		t.Fatalf("combos = %d, want 1", len(m.Active().Combos))
	}

	m.ToggleCombo(0)
	m.ApplyPending()
	if m.Active().Combos[0].Enabled {
		t.Error("ToggleCombo should disable the combo")
	}

	// Out-of-range indices are ignored, not a panic
	m.RemoveCombo(5)
	m.ToggleCombo(-1)
	m.ApplyPending()
	if len(m.Active().Combos) != 1 {
		t.Error("out-of-range combo edits must be no-ops")
	}

	m.RemoveCombo(0)
	m.ApplyPending()
	if len(m.Active().Combos) != 0 {
		t.Error("RemoveCombo should delete the combo")
	}
}

func TestManager_SetBaseline(t *testing.T) {
	m, store := newTestManager(t)

	b := expression.Baseline{EyeOpen: 0.4, LipHeight: 0.08, LipWidth: 0.3}
	m.SetBaseline(b)

	if m.Active().Baseline != b {
		t.Errorf("Baseline = %+v, want %+v", m.Active().Baseline, b)
	}
	stored := findProfile(store.Doc, m.Active().ID)
	if stored.Baseline != b {
		t.Error("baseline should be persisted")
	}
}

func TestProfile_Clone(t *testing.T) {
	p := Default("original")
	p.Combos = []gesture.Combo{{Primary: expression.Smile, Secondary: expression.MouthOpen}}

	c := p.Clone()
	c.Name = "copy"
	c.Triggers[expression.MouthOpen] = gesture.Trigger{Threshold: 0.9}
	c.Combos[0].Enabled = true

	if p.Name != "original" {
		t.Error("Clone must not share the name")
	}
	if p.Triggers[expression.MouthOpen].Threshold != 0 {
		t.Error("Clone must not share the trigger map")
	}
	if p.Combos[0].Enabled {
		t.Error("Clone must not share the combo slice")
	}
}
