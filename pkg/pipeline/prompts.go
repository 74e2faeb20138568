package pipeline

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptSet maps generative stages to their instruction templates. Templates
// are rendered against the run Context, so they may reference any of its
// fields ({{.SourceText}}, {{.EnhancedPrompt}}, ...).
type PromptSet map[Stage]string

const defaultEnhancementPrompt = `You improve questions asked about a document.

Document:
{{.SourceText}}

Question:
{{.OriginalPrompt}}
{{- if .AdditionalContext}}

Additional context:
{{- range $k, $v := .AdditionalContext}}
- {{$k}}: {{$v}}
{{- end}}
{{- end}}

Rewrite the question as a single precise, self-contained instruction that
names the parts of the document relevant to answering it. Respond with the
rewritten instruction only.`

const defaultProcessingPrompt = `You answer questions from document content.

Document:
{{.SourceText}}

Instruction:
{{.EnhancedPrompt}}

First collect the passages of the document needed to follow the instruction,
then write a complete draft answer grounded in those passages. Respond with a
JSON object: {"extract": "<relevant passages, organized>", "answer": "<draft answer>"}.`

const defaultValidationPrompt = `You check a draft answer against its source document.

Document:
{{.SourceText}}

Instruction:
{{.EnhancedPrompt}}

Draft answer:
{{.DraftAnswer}}

Score the draft from 0 to 100 for accuracy against the document and coverage
of the instruction. Respond with a JSON object: {"score": <0-100>, "feedback":
"<what is wrong or missing, if anything>"}.`

const defaultReviewPrompt = `You revise a draft answer that failed review.

Document:
{{.SourceText}}

Instruction:
{{.EnhancedPrompt}}

Draft answer:
{{.DraftAnswer}}

Reviewer feedback:
{{.ValidationFeedback}}

Rewrite the draft to address every point of feedback, staying grounded in the
document. Respond with the revised answer only.`

const defaultCompletionPrompt = `You format a finished answer for delivery.

Original question:
{{.OriginalPrompt}}

Answer:
{{.DraftAnswer}}

Present the answer clearly for the person who asked the original question.
Respond with the formatted answer only.`

// DefaultPrompts returns the built-in instruction templates.
func DefaultPrompts() PromptSet {
	return PromptSet{
		StageEnhancement: defaultEnhancementPrompt,
		StageProcessing:  defaultProcessingPrompt,
		StageValidation:  defaultValidationPrompt,
		StageReview:      defaultReviewPrompt,
		StageCompletion:  defaultCompletionPrompt,
	}
}

// LoadPrompts reads stage template overrides from a YAML file and merges them
// over the defaults. Stages absent from the file keep their built-in template.
func LoadPrompts(path string) (PromptSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse prompt manifest %s: %w", path, err)
	}

	prompts := DefaultPrompts()
	for name, text := range overrides {
		stage := Stage(name)
		if _, ok := prompts[stage]; !ok {
			return nil, fmt.Errorf("prompt manifest %s: unknown stage %q", path, name)
		}
		prompts[stage] = text
	}
	return prompts, nil
}

func renderPrompt(stage Stage, prompts PromptSet, rc *Context) (string, error) {
	text, ok := prompts[stage]
	if !ok {
		return "", fmt.Errorf("no prompt template for stage %s", stage)
	}

	tmpl, err := template.New(string(stage)).Parse(text)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, rc); err != nil {
		return "", err
	}
	return sb.String(), nil
}
