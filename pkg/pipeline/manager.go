package pipeline

import (
	"context"
	"strings"
)

// ManagerHandler validates run input before any generation happens. It is the
// only non-generative stage.
type ManagerHandler struct{}

// NewManagerHandler creates the manager stage handler.
func NewManagerHandler() *ManagerHandler {
	return &ManagerHandler{}
}

// Run checks that the context carries usable source text and a prompt.
func (h *ManagerHandler) Run(_ context.Context, rc *Context) (*Result, error) {
	if strings.TrimSpace(rc.SourceText) == "" {
		return nil, &InputError{Err: ErrEmptySource}
	}
	if strings.TrimSpace(rc.OriginalPrompt) == "" {
		return nil, &InputError{Err: ErrEmptyPrompt}
	}
	return &Result{Next: StageEnhancement, Note: "input accepted"}, nil
}
