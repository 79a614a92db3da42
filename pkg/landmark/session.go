package landmark

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/facepilot/facepilot/pkg/protocol"
)

// Sample is one recorded landmark frame with its capture timestamp.
// Sessions are JSONL files, one sample per line, replayable through the
// pipeline for deterministic tuning and regression runs.
type Sample struct {
	TS        int64                  `json:"ts"` // Unix milliseconds
	Landmarks protocol.LandmarksData `json:"landmarks"`
}

// SessionWriter appends samples to a JSONL session file
type SessionWriter struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
}

// NewSessionWriter creates (or truncates) a session file
func NewSessionWriter(path string) (*SessionWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create session file: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &SessionWriter{f: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Append writes one sample
func (w *SessionWriter) Append(ts int64, lm protocol.LandmarksData) error {
	return w.enc.Encode(Sample{TS: ts, Landmarks: lm})
}

// Close flushes and closes the session file
func (w *SessionWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// ReadSession loads all samples from a JSONL session file
func ReadSession(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	var samples []Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var s Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("bad session sample at line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return samples, nil
}
