// Package trace persists run observability records. Each run gets a directory
// holding run metadata and the ordered stage transitions, mirroring what the
// controller logs.
package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunRecord captures run-level metadata.
type RunRecord struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	InputHash    string    `json:"input_hash"`
	Outcome      string    `json:"outcome"`
	Score        int       `json:"score"`
	ReviewCycles int       `json:"review_cycles"`
	Error        string    `json:"error,omitempty"`
}

// TransitionRecord captures one completed stage transition.
type TransitionRecord struct {
	Stage        string    `json:"stage"`
	Timestamp    time.Time `json:"timestamp"`
	ContextBytes int       `json:"context_bytes"`
	Note         string    `json:"note,omitempty"`
}

// Recorder receives run records as the controller produces them.
type Recorder interface {
	RecordTransition(runID string, rec TransitionRecord) error
	RecordRun(rec RunRecord) error
}

// Writer is a Recorder that writes JSON bundles under baseDir/<run-id>/.
type Writer struct {
	baseDir string
}

// NewWriter creates a writer rooted at baseDir.
func NewWriter(baseDir string) (*Writer, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Writer{baseDir: baseDir}, nil
}

// RunDir returns the directory for a run.
func (w *Writer) RunDir(runID string) string {
	return filepath.Join(w.baseDir, runID)
}

// RecordTransition appends a transition to transitions.json for the run.
func (w *Writer) RecordTransition(runID string, rec TransitionRecord) error {
	dir := w.RunDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, "transitions.json")
	var records []TransitionRecord
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("corrupt transition log %s: %w", path, err)
		}
	}
	records = append(records, rec)

	return writeJSON(path, records)
}

// RecordRun writes run metadata to run.json.
func (w *Writer) RecordRun(rec RunRecord) error {
	dir := w.RunDir(rec.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "run.json"), rec)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) RecordTransition(string, TransitionRecord) error { return nil }
func (NopRecorder) RecordRun(RunRecord) error                      { return nil }

// HashInput returns a short digest of run input for correlation.
func HashInput(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
