package pipeline

import (
	"context"

	"github.com/zen-systems/docpilot/pkg/adapter"
)

// generator is the shared base for generative stage handlers. It renders the
// stage's instruction template against the run context and calls the adapter,
// accumulating token usage on the context.
type generator struct {
	stage   Stage
	adapter adapter.Adapter
	model   string
	prompts PromptSet
}

func (g *generator) generate(ctx context.Context, rc *Context) (string, error) {
	prompt, err := renderPrompt(g.stage, g.prompts, rc)
	if err != nil {
		return "", &GenerationError{Stage: g.stage, Err: err}
	}

	gen, err := g.adapter.Generate(ctx, g.model, prompt)
	if err != nil {
		return "", &GenerationError{Stage: g.stage, Err: err}
	}

	rc.Usage.Add(gen.Usage)
	return gen.Text, nil
}

// NewHandlers wires the full stage set against one adapter and model. prompts
// may be nil to use the built-in templates.
func NewHandlers(a adapter.Adapter, model string, prompts PromptSet) map[Stage]Handler {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return map[Stage]Handler{
		StageManager:     NewManagerHandler(),
		StageEnhancement: NewEnhancementHandler(a, model, prompts),
		StageProcessing:  NewProcessingHandler(a, model, prompts),
		StageValidation:  NewValidationHandler(a, model, prompts),
		StageReview:      NewReviewHandler(a, model, prompts),
		StageCompletion:  NewCompletionHandler(a, model, prompts),
	}
}
