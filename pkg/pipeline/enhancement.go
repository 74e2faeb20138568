package pipeline

import (
	"context"
	"strings"

	"github.com/zen-systems/docpilot/pkg/adapter"
)

// EnhancementHandler rewrites the user's prompt into a precise instruction
// using the document for signal.
type EnhancementHandler struct {
	generator
}

// NewEnhancementHandler creates the enhancement stage handler.
func NewEnhancementHandler(a adapter.Adapter, model string, prompts PromptSet) *EnhancementHandler {
	return &EnhancementHandler{generator{stage: StageEnhancement, adapter: a, model: model, prompts: prompts}}
}

// Run produces the enhanced prompt. A blank model response falls back to the
// original prompt so downstream stages always have an instruction to work with.
func (h *EnhancementHandler) Run(ctx context.Context, rc *Context) (*Result, error) {
	text, err := h.generate(ctx, rc)
	if err != nil {
		return nil, err
	}

	enhanced := strings.TrimSpace(text)
	if enhanced == "" {
		enhanced = rc.OriginalPrompt
	}
	rc.EnhancedPrompt = enhanced

	return &Result{Next: StageProcessing, Note: "prompt enhanced"}, nil
}
