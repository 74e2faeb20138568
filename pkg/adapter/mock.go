package adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
// Rules match on prompt substrings in registration order; a rule with several
// queued responses pops one per call and repeats the last when exhausted.
type MockAdapter struct {
	mu              sync.Mutex
	rules           []*mockRule
	defaultResponse string
	calls           []string
}

type mockRule struct {
	match     string
	responses []string
	err       error
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{defaultResponse: "mock response:"}
}

// Respond registers responses for prompts containing match.
func (a *MockAdapter) Respond(match string, responses ...string) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = append(a.rules, &mockRule{match: match, responses: responses})
	return a
}

// FailOn makes prompts containing match return err.
func (a *MockAdapter) FailOn(match string, err error) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = append(a.rules, &mockRule{match: match, err: err})
	return a
}

// Calls returns the prompts seen so far.
func (a *MockAdapter) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns a deterministic response for the prompt.
func (a *MockAdapter) Generate(_ context.Context, model string, prompt string) (*Generation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if model == "" {
		model = "mock-1"
	}
	a.calls = append(a.calls, prompt)

	for _, rule := range a.rules {
		if !strings.Contains(prompt, rule.match) {
			continue
		}
		if rule.err != nil {
			return nil, rule.err
		}
		if len(rule.responses) == 0 {
			break
		}
		text := rule.responses[0]
		if len(rule.responses) > 1 {
			rule.responses = rule.responses[1:]
		}
		return &Generation{Text: text, Model: model}, nil
	}

	return &Generation{
		Text:  fmt.Sprintf("%s\n%s", a.defaultResponse, prompt),
		Model: model,
	}, nil
}
