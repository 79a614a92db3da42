// Replay - runs a recorded landmark session through the facepilot
// pipeline and prints the resulting action trace. The same session with
// the same profile always yields the same trace, which makes recorded
// sessions usable as tuning and regression material.
package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/facepilot/facepilot/internal/config"
	"github.com/facepilot/facepilot/internal/log"
	"github.com/facepilot/facepilot/pkg/action"
	"github.com/facepilot/facepilot/pkg/landmark"
	"github.com/facepilot/facepilot/pkg/pipeline"
	"github.com/facepilot/facepilot/pkg/profile"
)

func main() {
	_ = godotenv.Load()

	session := flag.String("session", "", "Session JSONL file to replay (required)")
	profiles := flag.String("profiles", config.ProfileDir(), "Profile storage directory")
	calibrate := flag.Bool("calibrate", false, "Run calibration at the start of the session")
	verbose := flag.Bool("v", false, "Print continuous actions as well as discrete ones")
	flag.Parse()

	log.Init(config.LogLevel())

	if *session == "" {
		flag.Usage()
		os.Exit(2)
	}

	samples, err := landmark.ReadSession(*session)
	if err != nil {
		stdlog.Fatalf("failed to load session: %v", err)
	}
	if len(samples) == 0 {
		stdlog.Fatalf("session is empty: %s", *session)
	}

	prof, err := loadProfile(*profiles)
	if err != nil {
		stdlog.Fatalf("failed to load profile: %v", err)
	}

	recorder := action.NewRecorder()
	pipe := pipeline.New(prof, action.DefaultConfig(), recorder)
	if *calibrate {
		pipe.Calibrate()
	}

	start := samples[0].TS
	counts := map[action.ID]int{}
	skipped := 0

	for _, s := range samples {
		frame := landmark.FrameFromWire(&s.Landmarks)
		res := pipe.Process(frame, time.UnixMilli(s.TS))
		if res.Skipped {
			skipped++
			continue
		}
		for _, ev := range res.Events {
			counts[ev.Action]++
			if ev.Kind == action.KindContinuous && !*verbose {
				continue
			}
			offset := float64(s.TS-start) / 1000.0
			fmt.Printf("%8.3fs  %-12s %-14s intensity=%.2f\n", offset, ev.Kind, ev.Action, ev.Intensity)
		}
	}

	fmt.Printf("\n%d frames (%d without landmarks), profile %q\n", len(samples), skipped, prof.Name)
	fmt.Printf("%d actuator calls: %d move, %d scroll, %d click, %d key, %d drag\n",
		len(recorder.Calls),
		recorder.CountOp("move"), recorder.CountOp("scroll"),
		recorder.CountOp("click"), recorder.CountOp("key"), recorder.CountOp("drag"))
	for _, id := range orderedActions(counts) {
		fmt.Printf("  %-14s x%d\n", id, counts[id])
	}
}

// loadProfile returns the active stored profile, or a default profile
// when the store is empty or missing
func loadProfile(dir string) (*profile.Profile, error) {
	manager, err := profile.NewManager(profile.NewFileStore(dir))
	if err != nil {
		return nil, err
	}
	return manager.Active(), nil
}

// orderedActions returns the counted action IDs in a stable order:
// built-in actions first, then key actions alphabetically
func orderedActions(counts map[action.ID]int) []action.ID {
	seen := map[action.ID]bool{}
	var out []action.ID
	for _, id := range action.All() {
		if counts[id] > 0 {
			out = append(out, id)
			seen[id] = true
		}
	}
	var rest []action.ID
	for id := range counts {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}
