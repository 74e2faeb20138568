package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/zen-systems/docpilot/pkg/adapter"
)

// ProcessingHandler extracts the relevant document content and writes the
// first draft answer.
type ProcessingHandler struct {
	generator
}

// NewProcessingHandler creates the processing stage handler.
func NewProcessingHandler(a adapter.Adapter, model string, prompts PromptSet) *ProcessingHandler {
	return &ProcessingHandler{generator{stage: StageProcessing, adapter: a, model: model, prompts: prompts}}
}

// Run fills ExtractedContent and DraftAnswer. The model is asked for JSON;
// when it answers in plain prose instead, the whole response becomes the
// draft and extraction stays empty.
func (h *ProcessingHandler) Run(ctx context.Context, rc *Context) (*Result, error) {
	text, err := h.generate(ctx, rc)
	if err != nil {
		return nil, err
	}

	body := jsonBody(text)
	if answer := gjson.Get(body, "answer"); answer.Exists() {
		rc.DraftAnswer = answer.String()
		rc.ExtractedContent = gjson.Get(body, "extract").String()
	} else {
		rc.DraftAnswer = strings.TrimSpace(text)
	}

	if rc.DraftAnswer == "" {
		return nil, &GenerationError{Stage: StageProcessing, Err: fmt.Errorf("empty draft answer")}
	}

	return &Result{Next: StageValidation, Note: "draft produced"}, nil
}
