package pipeline

import (
	"context"
	"strings"

	"github.com/zen-systems/docpilot/pkg/adapter"
)

// CompletionHandler formats the validated draft into the final answer.
type CompletionHandler struct {
	generator
}

// NewCompletionHandler creates the completion stage handler.
func NewCompletionHandler(a adapter.Adapter, model string, prompts PromptSet) *CompletionHandler {
	return &CompletionHandler{generator{stage: StageCompletion, adapter: a, model: model, prompts: prompts}}
}

// Run fills FinalAnswer and terminates the run. A blank formatting response
// falls back to the validated draft rather than failing a run whose content
// already passed.
func (h *CompletionHandler) Run(ctx context.Context, rc *Context) (*Result, error) {
	text, err := h.generate(ctx, rc)
	if err != nil {
		return nil, err
	}

	final := strings.TrimSpace(text)
	if final == "" {
		final = rc.DraftAnswer
	}
	rc.FinalAnswer = final

	return &Result{Next: StageTerminate, Note: "answer finalized"}, nil
}
