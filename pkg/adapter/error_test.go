package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"cancelled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
		{"rate limited", &Error{Adapter: "openai", Status: 429}, true},
		{"server error", &Error{Adapter: "anthropic", Status: 503}, true},
		{"client error", &Error{Adapter: "google", Status: 400}, false},
		{"temporary flag", &Error{Adapter: "mock", Temporary: true}, true},
		{"wrapped server error", fmt.Errorf("call failed: %w", &Error{Status: 500}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Adapter: "openai", Status: 502, Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not found by errors.Is")
	}
	if err.Error() != "openai: connection reset" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestMockAdapterRules(t *testing.T) {
	mock := NewMockAdapter().
		Respond("alpha", "first", "second").
		FailOn("beta", errors.New("boom"))

	gen, err := mock.Generate(context.Background(), "", "say alpha please")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.Text != "first" {
		t.Fatalf("text = %q, want first", gen.Text)
	}
	if gen.Model != "mock-1" {
		t.Fatalf("model = %q, want mock-1", gen.Model)
	}

	gen, _ = mock.Generate(context.Background(), "mock-1", "say alpha again")
	if gen.Text != "second" {
		t.Fatalf("text = %q, want second", gen.Text)
	}
	// Queue exhausted: the last response repeats.
	gen, _ = mock.Generate(context.Background(), "mock-1", "alpha once more")
	if gen.Text != "second" {
		t.Fatalf("text = %q, want second", gen.Text)
	}

	if _, err := mock.Generate(context.Background(), "mock-1", "beta"); err == nil {
		t.Fatal("expected failure for beta prompt")
	}

	if calls := mock.Calls(); len(calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(calls))
	}
}
