package pipeline

import (
	"github.com/zen-systems/docpilot/pkg/adapter"
)

// Context is the accumulating record of one pipeline run. It is owned by a
// single Controller.Run call and never shared across runs; handlers mutate it
// in place and the controller appends to History as stages are entered.
type Context struct {
	SourceText        string            `json:"source_text"`
	OriginalPrompt    string            `json:"original_prompt"`
	AdditionalContext map[string]string `json:"additional_context,omitempty"`

	EnhancedPrompt     string `json:"enhanced_prompt,omitempty"`
	ExtractedContent   string `json:"extracted_content,omitempty"`
	DraftAnswer        string `json:"draft_answer,omitempty"`
	ValidationScore    int    `json:"validation_score"`
	ValidationFeedback string `json:"validation_feedback,omitempty"`
	FinalAnswer        string `json:"final_answer,omitempty"`

	History []Stage       `json:"history"`
	Usage   adapter.Usage `json:"usage"`
}

// Size returns the total byte size of the accumulated text fields. Used for
// transition records, not for budgeting.
func (c *Context) Size() int {
	n := len(c.SourceText) + len(c.OriginalPrompt) + len(c.EnhancedPrompt) +
		len(c.ExtractedContent) + len(c.DraftAnswer) +
		len(c.ValidationFeedback) + len(c.FinalAnswer)
	for k, v := range c.AdditionalContext {
		n += len(k) + len(v)
	}
	return n
}
