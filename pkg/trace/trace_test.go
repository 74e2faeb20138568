package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterRecordsRun(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	rec := RunRecord{
		ID:           "run-1",
		StartedAt:    time.Now().UTC(),
		FinishedAt:   time.Now().UTC(),
		InputHash:    HashInput("doc", "prompt"),
		Outcome:      "completed",
		Score:        88,
		ReviewCycles: 1,
	}
	if err := w.RecordRun(rec); err != nil {
		t.Fatalf("record run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(w.RunDir("run-1"), "run.json"))
	if err != nil {
		t.Fatalf("read run record: %v", err)
	}

	var got RunRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "run-1" || got.Score != 88 || got.Outcome != "completed" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestWriterAppendsTransitions(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	stages := []string{"manager", "enhancement", "processing"}
	for i, stage := range stages {
		rec := TransitionRecord{
			Stage:        stage,
			Timestamp:    time.Now().UTC(),
			ContextBytes: 100 * (i + 1),
		}
		if err := w.RecordTransition("run-2", rec); err != nil {
			t.Fatalf("record transition %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(w.RunDir("run-2"), "transitions.json"))
	if err != nil {
		t.Fatalf("read transitions: %v", err)
	}

	var got []TransitionRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("transitions = %d, want 3", len(got))
	}
	for i, stage := range stages {
		if got[i].Stage != stage {
			t.Fatalf("transition %d = %s, want %s", i, got[i].Stage, stage)
		}
	}
}

func TestHashInputStable(t *testing.T) {
	a := HashInput("doc", "prompt")
	b := HashInput("doc", "prompt")
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("hash length = %d, want 16", len(a))
	}
	if a == HashInput("doc", "other prompt") {
		t.Fatal("different inputs produced identical hash")
	}
}

func TestNewWriterRequiresBaseDir(t *testing.T) {
	if _, err := NewWriter(""); err == nil {
		t.Fatal("expected error for empty base directory")
	}
}
