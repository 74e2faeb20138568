package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/docpilot/pkg/adapter"
)

// ReviewHandler revises a draft that failed validation, using the validation
// feedback. Its successor is always another validation pass.
type ReviewHandler struct {
	generator
}

// NewReviewHandler creates the review stage handler.
func NewReviewHandler(a adapter.Adapter, model string, prompts PromptSet) *ReviewHandler {
	return &ReviewHandler{generator{stage: StageReview, adapter: a, model: model, prompts: prompts}}
}

// Run replaces DraftAnswer with the revised draft.
func (h *ReviewHandler) Run(ctx context.Context, rc *Context) (*Result, error) {
	text, err := h.generate(ctx, rc)
	if err != nil {
		return nil, err
	}

	revised := strings.TrimSpace(text)
	if revised == "" {
		return nil, &GenerationError{Stage: StageReview, Err: fmt.Errorf("empty revision")}
	}
	rc.DraftAnswer = revised

	return &Result{Next: StageValidation, Note: "draft revised"}, nil
}
