package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/zen-systems/docpilot/pkg/adapter"
)

// ValidationHandler scores the draft answer against the source document. It
// leaves Next empty: routing off the score belongs to the controller's gate.
type ValidationHandler struct {
	generator
}

// NewValidationHandler creates the validation stage handler.
func NewValidationHandler(a adapter.Adapter, model string, prompts PromptSet) *ValidationHandler {
	return &ValidationHandler{generator{stage: StageValidation, adapter: a, model: model, prompts: prompts}}
}

// Run records the validation outcome on the context.
func (h *ValidationHandler) Run(ctx context.Context, rc *Context) (*Result, error) {
	text, err := h.generate(ctx, rc)
	if err != nil {
		return nil, err
	}

	outcome, err := parseOutcome(text)
	if err != nil {
		return nil, &GenerationError{Stage: StageValidation, Err: err}
	}

	rc.ValidationScore = outcome.Score
	rc.ValidationFeedback = outcome.Feedback

	return &Result{Note: fmt.Sprintf("scored %d", outcome.Score)}, nil
}

// parseOutcome pulls score and feedback out of a model response.
func parseOutcome(text string) (*Outcome, error) {
	body := jsonBody(text)

	score := gjson.Get(body, "score")
	if !score.Exists() {
		return nil, fmt.Errorf("validation response missing score: %q", truncate(text, 200))
	}

	n := int(score.Int())
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}

	return &Outcome{
		Score:    n,
		Feedback: gjson.Get(body, "feedback").String(),
	}, nil
}

// jsonBody cuts a model response down to its outermost JSON object. Responses
// are requested as bare JSON but arrive with fences or prose around the object
// often enough that this is worth doing before parsing.
func jsonBody(text string) string {
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			return text[start : end+1]
		}
	}
	return text
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
