package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/zen-systems/docpilot/pkg/adapter"
)

func TestParseOutcome(t *testing.T) {
	cases := []struct {
		name         string
		text         string
		wantScore    int
		wantFeedback string
		wantErr      bool
	}{
		{
			name:         "plain json",
			text:         `{"score": 85, "feedback": "solid"}`,
			wantScore:    85,
			wantFeedback: "solid",
		},
		{
			name:      "fenced json",
			text:      "```json\n{\"score\": 42, \"feedback\": \"weak\"}\n```",
			wantScore: 42, wantFeedback: "weak",
		},
		{
			name:      "prose around object",
			text:      "Here is my assessment: {\"score\": 70, \"feedback\": \"\"} hope it helps",
			wantScore: 70,
		},
		{
			name:      "score above range clamped",
			text:      `{"score": 130, "feedback": "x"}`,
			wantScore: 100, wantFeedback: "x",
		},
		{
			name:      "score below range clamped",
			text:      `{"score": -5}`,
			wantScore: 0,
		},
		{
			name:    "missing score",
			text:    `{"feedback": "no score here"}`,
			wantErr: true,
		},
		{
			name:    "no json at all",
			text:    "I think it looks fine.",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := parseOutcome(tc.text)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", outcome)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse outcome: %v", err)
			}
			if outcome.Score != tc.wantScore {
				t.Fatalf("score = %d, want %d", outcome.Score, tc.wantScore)
			}
			if outcome.Feedback != tc.wantFeedback {
				t.Fatalf("feedback = %q, want %q", outcome.Feedback, tc.wantFeedback)
			}
		})
	}
}

func TestValidationHandlerRecordsOutcome(t *testing.T) {
	mock := adapter.NewMockAdapter().
		Respond("check a draft answer", `{"score": 55, "feedback": "missing the second section"}`)

	h := NewValidationHandler(mock, "mock-1", DefaultPrompts())
	rc := &Context{SourceText: "doc", EnhancedPrompt: "q", DraftAnswer: "draft"}

	res, err := h.Run(context.Background(), rc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Next != "" {
		t.Fatalf("validation handler set next = %s, want empty (controller gate)", res.Next)
	}
	if rc.ValidationScore != 55 {
		t.Fatalf("score = %d, want 55", rc.ValidationScore)
	}
	if rc.ValidationFeedback != "missing the second section" {
		t.Fatalf("feedback = %q", rc.ValidationFeedback)
	}
}

func TestValidationHandlerMalformedResponse(t *testing.T) {
	mock := adapter.NewMockAdapter().
		Respond("check a draft answer", "looks good to me")

	h := NewValidationHandler(mock, "mock-1", DefaultPrompts())
	rc := &Context{SourceText: "doc", EnhancedPrompt: "q", DraftAnswer: "draft"}

	_, err := h.Run(context.Background(), rc)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
	if genErr.Stage != StageValidation {
		t.Fatalf("stage = %s, want validation", genErr.Stage)
	}
}
