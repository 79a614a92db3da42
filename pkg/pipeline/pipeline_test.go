package pipeline

import (
	"testing"
	"time"

	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/expression"
	"github.com/facepilot/facepilot/pkg/gesture"
	"github.com/facepilot/facepilot/pkg/landmark"
	"github.com/facepilot/facepilot/pkg/profile"
)

// box returns four corner points spanning the given extents
func box(minX, minY, maxX, maxY float64) []landmark.Point {
	return []landmark.Point{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: minX, Y: maxY},
		{X: maxX, Y: maxY},
	}
}

// faceFrame builds a frame whose inner lip height and outer lip width
// are exactly the given values, with neutral eyes
func faceFrame(lipHeight, lipWidth float64) landmark.Frame {
	left := 0.5 - lipWidth/2
	return landmark.Frame{Regions: map[landmark.Region][]landmark.Point{
		landmark.LeftEye:   box(0.25, 0.30, 0.35, 0.34),
		landmark.RightEye:  box(0.55, 0.30, 0.65, 0.34),
		landmark.InnerLips: box(0.45, 0.70, 0.55, 0.70+lipHeight),
		landmark.OuterLips: box(left, 0.65, left+lipWidth, 0.80),
		landmark.Nose:      box(0.45, 0.50, 0.55, 0.62),
	}}
}

func neutralFrame() landmark.Frame { return faceFrame(0.02, 0.30) }
func mouthOpenFrame() landmark.Frame { return faceFrame(0.14, 0.30) }
func smileFrame() landmark.Frame     { return faceFrame(0.02, 0.40) }
func comboFrame() landmark.Frame     { return faceFrame(0.14, 0.40) }

// testProfile returns a calibrated profile with every trigger disabled
func testProfile() *profile.Profile {
	prof := profile.Default("test")
	prof.Smoothing = 0
	prof.Baseline = expression.Baseline{
		EyeOpen:   0.4,
		LipHeight: 0.02,
		LipWidth:  0.30,
		Ratio:     0.02 / 0.30,
	}
	prof.Gains = expression.Gains{Height: 10, Width: 10, Brow: 5}
	return prof
}

func enable(prof *profile.Profile, ch expression.Channel, trig gesture.Trigger) {
	trig.Enabled = true
	prof.Triggers[ch] = trig
}

// run feeds frames at 30fps starting from a fixed instant
type clock struct {
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Unix(1700000000, 0)}
}

func (c *clock) step(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

const frameStep = 33 * time.Millisecond

func TestPipeline_TriggerFiresAction(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{Threshold: 0.5, Action: action.LeftClick})

	rec := action.NewRecorder()
	p := New(prof, action.DefaultConfig(), rec)
	clk := newClock()

	res := p.Process(neutralFrame(), clk.now)
	if len(res.Events) != 0 {
		t.Fatalf("neutral frame emitted %v", res.Events)
	}

	res = p.Process(mouthOpenFrame(), clk.step(frameStep))
	if len(res.Events) != 1 || res.Events[0].Action != action.LeftClick {
		t.Fatalf("events = %v, want one left_click", res.Events)
	}
	if rec.CountOp("click") != 2 {
		t.Errorf("click calls = %d, want down/up pair", rec.CountOp("click"))
	}
	if res.State[expression.MouthOpen] != 1.0 {
		t.Errorf("MouthOpen = %v, want 1.0", res.State[expression.MouthOpen])
	}
}

func TestPipeline_HoldGatesAction(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{
		Threshold:    0.5,
		HoldDuration: 0.3,
		Action:       action.LeftClick,
	})

	rec := action.NewRecorder()
	p := New(prof, action.DefaultConfig(), rec)
	clk := newClock()

	p.Process(neutralFrame(), clk.now)

	dt := 100 * time.Millisecond
	for i := 0; i < 3; i++ {
		res := p.Process(mouthOpenFrame(), clk.step(dt))
		if len(res.Events) != 0 {
			t.Fatalf("frame %d: fired before the hold elapsed: %v", i, res.Events)
		}
	}

	res := p.Process(mouthOpenFrame(), clk.step(dt))
	if len(res.Events) != 1 {
		t.Fatalf("events = %v, want one after the hold", res.Events)
	}
}

func TestPipeline_SkippedFramePreservesHold(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{
		Threshold:    0.5,
		HoldDuration: 0.3,
		Action:       action.LeftClick,
	})

	p := New(prof, action.DefaultConfig(), action.NewRecorder())
	clk := newClock()

	p.Process(neutralFrame(), clk.now)

	dt := 100 * time.Millisecond
	p.Process(mouthOpenFrame(), clk.step(dt)) // rising edge, hold 0
	p.Process(mouthOpenFrame(), clk.step(dt)) // hold 0.1

	// Detector loses the face for a frame: the result is flagged and the
	// hold timer neither advances nor resets
	res := p.Process(landmark.Frame{}, clk.step(dt))
	if !res.Skipped {
		t.Fatal("frame without landmarks should be skipped")
	}
	if len(res.Events) != 0 {
		t.Fatalf("skipped frame emitted %v", res.Events)
	}

	// Two more active frames reach 0.3s of accumulated hold; the gap
	// spent faceless does not count toward it
	res = p.Process(mouthOpenFrame(), clk.step(dt))
	if len(res.Events) != 0 {
		t.Fatalf("hold should not include the faceless gap: %v", res.Events)
	}
	res = p.Process(mouthOpenFrame(), clk.step(dt))
	if len(res.Events) != 1 {
		t.Fatalf("events = %v, want one after re-accumulating", res.Events)
	}
}

func TestPipeline_CalibrationDisablesActions(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{Threshold: 0.5, Action: action.LeftClick})

	rec := action.NewRecorder()
	p := New(prof, action.DefaultConfig(), rec)
	clk := newClock()

	var saved *expression.Baseline
	p.OnCalibrated = func(b expression.Baseline) { saved = &b }

	p.Calibrate()
	if p.Calibration() != expression.Calibrating {
		t.Fatalf("state = %v, want Calibrating", p.Calibration())
	}

	// Frames that would normally fire produce nothing during the window
	// The window is measured from the first observed frame, so run a
	// little past it
	deadline := clk.now.Add(expression.CalibrationWindow + 100*time.Millisecond)
	for clk.now.Before(deadline) {
		res := p.Process(mouthOpenFrame(), clk.step(frameStep))
		if len(res.Events) != 0 {
			t.Fatalf("calibrating frame emitted %v", res.Events)
		}
	}

	if p.Calibration() != expression.Calibrated {
		t.Fatalf("state = %v, want Calibrated", p.Calibration())
	}
	if saved == nil {
		t.Fatal("OnCalibrated was not invoked")
	}
	if saved.LipHeight != 0.14 {
		t.Errorf("baseline LipHeight = %v, want 0.14", saved.LipHeight)
	}
	if prof.Baseline != *saved {
		t.Error("completed calibration must install the baseline in the profile")
	}
	if rec.CountOp("click") != 0 {
		t.Error("no actuator calls may happen while calibrating")
	}
}

func TestPipeline_ComboSuppressesSingles(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{Threshold: 0.5, Action: action.LeftClick})
	enable(prof, expression.Smile, gesture.Trigger{Threshold: 0.5, Action: action.RightClick})
	prof.Combos = []gesture.Combo{{
		Primary:   expression.MouthOpen,
		Secondary: expression.Smile,
		Action:    action.MiddleClick,
		Enabled:   true,
	}}

	rec := action.NewRecorder()
	p := New(prof, action.DefaultConfig(), rec)
	clk := newClock()

	p.Process(neutralFrame(), clk.now)
	res := p.Process(comboFrame(), clk.step(frameStep))

	if len(res.Events) != 1 || res.Events[0].Action != action.MiddleClick {
		t.Fatalf("events = %v, want only the combo action", res.Events)
	}
	for _, c := range rec.Calls {
		if c.Button != action.ButtonMiddle {
			t.Errorf("call used button %q, want middle only", c.Button)
		}
	}
}

func TestPipeline_ComboOverObserveOnlyChannels(t *testing.T) {
	// A combo stands on its own: its member channels stay at the default
	// observe-only configuration and never fire singles themselves
	prof := testProfile()
	prof.Combos = []gesture.Combo{{
		Primary:   expression.MouthOpen,
		Secondary: expression.Smile,
		Action:    action.MiddleClick,
		Enabled:   true,
	}}

	rec := action.NewRecorder()
	p := New(prof, action.DefaultConfig(), rec)
	clk := newClock()

	p.Process(neutralFrame(), clk.now)

	var fired int
	for i := 0; i < 5; i++ {
		res := p.Process(comboFrame(), clk.step(frameStep))
		for _, ev := range res.Events {
			if ev.Action != action.MiddleClick {
				t.Fatalf("frame %d emitted %v, want only the combo action", i, ev)
			}
			fired++
		}
	}
	if fired == 0 {
		t.Fatal("combo over observe-only channels never fired")
	}
	if rec.CountOp("click") == 0 {
		t.Error("expected middle-click actuator calls")
	}
	for _, c := range rec.Calls {
		if c.Button != action.ButtonMiddle {
			t.Errorf("call used button %q, want middle only", c.Button)
		}
	}
}

func TestPipeline_SingleChannelStillFires(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.Smile, gesture.Trigger{Threshold: 0.5, Action: action.RightClick})
	prof.Combos = []gesture.Combo{{
		Primary:   expression.MouthOpen,
		Secondary: expression.Smile,
		Action:    action.MiddleClick,
		Enabled:   true,
	}}

	p := New(prof, action.DefaultConfig(), action.NewRecorder())
	clk := newClock()

	p.Process(neutralFrame(), clk.now)
	res := p.Process(smileFrame(), clk.step(frameStep))

	if len(res.Events) != 1 || res.Events[0].Action != action.RightClick {
		t.Fatalf("events = %v, want the single-channel action", res.Events)
	}
}

func TestPipeline_ProfileSwitchReleasesDrag(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{Threshold: 0.5, Action: action.DragToggle})

	rec := action.NewRecorder()
	p := New(prof, action.DefaultConfig(), rec)
	clk := newClock()

	p.Process(neutralFrame(), clk.now)
	p.Process(mouthOpenFrame(), clk.step(frameStep))
	if !p.DragHeld() {
		t.Fatal("drag should be held")
	}

	p.SetProfile(testProfile())
	if p.DragHeld() {
		t.Error("a profile switch must release a held drag")
	}
	last := rec.Calls[len(rec.Calls)-1]
	if last.Op != "click" || last.Down {
		t.Errorf("last call = %v, want button-up", last)
	}
}

func TestPipeline_SmoothingDelaysResponse(t *testing.T) {
	prof := testProfile()
	prof.Smoothing = 0.9
	enable(prof, expression.MouthOpen, gesture.Trigger{Threshold: 0.5, Action: action.LeftClick})

	p := New(prof, action.DefaultConfig(), action.NewRecorder())
	clk := newClock()

	p.Process(neutralFrame(), clk.now)

	// Heavy smoothing keeps the value under threshold on the first active
	// frame: 0.1*1.0 + 0.9*0 = 0.1
	res := p.Process(mouthOpenFrame(), clk.step(frameStep))
	if len(res.Events) != 0 {
		t.Fatalf("heavily smoothed value fired immediately: %v", res.Events)
	}
	if res.State[expression.MouthOpen] > 0.2 {
		t.Errorf("MouthOpen = %v, want heavily damped", res.State[expression.MouthOpen])
	}
}

func TestPipeline_ReplayIsDeterministic(t *testing.T) {
	prof := testProfile()
	enable(prof, expression.MouthOpen, gesture.Trigger{
		Threshold:    0.5,
		HoldDuration: 0.05,
		Action:       action.LeftClick,
	})

	frames := []landmark.Frame{
		neutralFrame(), mouthOpenFrame(), mouthOpenFrame(), mouthOpenFrame(),
		neutralFrame(), {}, mouthOpenFrame(), mouthOpenFrame(), mouthOpenFrame(),
	}

	run := func() []action.Event {
		rec := action.NewRecorder()
		p := New(prof.Clone(), action.DefaultConfig(), rec)
		clk := newClock()
		var events []action.Event
		for i, f := range frames {
			now := clk.now
			if i > 0 {
				now = clk.step(frameStep)
			}
			events = append(events, p.Process(f, now).Events...)
		}
		return events
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("runs differ: %d vs %d events", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("event %d differs: %v vs %v", i, first[i], second[i])
		}
	}
	if len(first) == 0 {
		t.Error("expected the session to emit at least one event")
	}
}
