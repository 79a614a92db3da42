package landmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/facepilot/facepilot/pkg/protocol"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")

	w, err := NewSessionWriter(path)
	if err != nil {
		t.Fatalf("NewSessionWriter() error = %v", err)
	}

	samples := []Sample{
		{TS: 1000, Landmarks: protocol.LandmarksData{
			FrameID: 1,
			Face:    true,
			Regions: map[string][][2]float64{"leftEye": {{0.2, 0.3}}},
		}},
		{TS: 1033, Landmarks: protocol.LandmarksData{FrameID: 2, Face: false}},
		{TS: 1066, Landmarks: protocol.LandmarksData{
			FrameID: 3,
			Face:    true,
			Regions: map[string][][2]float64{"outerLips": {{0.35, 0.65}, {0.65, 0.8}}},
		}},
	}
	for _, s := range samples {
		if err := w.Append(s.TS, s.Landmarks); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("samples = %d, want 3", len(got))
	}
	if got[0].TS != 1000 || got[0].Landmarks.FrameID != 1 {
		t.Errorf("sample 0 = %+v, want ts 1000 frame 1", got[0])
	}
	if got[1].Landmarks.Face {
		t.Error("sample 1 should carry no face")
	}
	if got[2].Landmarks.Regions["outerLips"][1] != [2]float64{0.65, 0.8} {
		t.Errorf("sample 2 regions = %v", got[2].Landmarks.Regions)
	}
}

func TestReadSession_Missing(t *testing.T) {
	if _, err := ReadSession(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("ReadSession() should fail for a missing file")
	}
}

func TestReadSession_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	content := `{"ts":1000,"landmarks":{"face":true}}` + "\nnot json\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadSession(path); err == nil {
		t.Error("ReadSession() should fail on a corrupt line")
	}
}

func TestReadSession_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.jsonl")
	content := `{"ts":1,"landmarks":{"face":true}}` + "\n\n" + `{"ts":2,"landmarks":{"face":false}}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("samples = %d, want 2", len(got))
	}
}
