package pipeline

import "context"

// Stage names one step in the fixed pipeline.
type Stage string

const (
	StageManager     Stage = "manager"
	StageEnhancement Stage = "enhancement"
	StageProcessing  Stage = "processing"
	StageValidation  Stage = "validation"
	StageReview      Stage = "review"
	StageCompletion  Stage = "completion"

	// StageTerminate is a directive returned by the final stage, not a
	// runnable stage.
	StageTerminate Stage = "terminate"
)

// Handler performs one stage's delegated work against the run context.
type Handler interface {
	Run(ctx context.Context, rc *Context) (*Result, error)
}

// Result is a handler's directive back to the controller. Context updates are
// applied by the handler directly; Next names the stage to dispatch next. An
// empty Next defers to the controller's transition table, which for the
// validation stage is the score gate.
type Result struct {
	Next Stage
	Note string
}

// Outcome is the validation stage's verdict on a draft answer.
type Outcome struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// transitions is the static stage graph. The validation entry is nil because
// its successor is decided by the score gate in the controller.
var transitions = map[Stage][]Stage{
	StageManager:     {StageEnhancement},
	StageEnhancement: {StageProcessing},
	StageProcessing:  {StageValidation},
	StageValidation:  {StageCompletion, StageReview},
	StageReview:      {StageValidation},
	StageCompletion:  {StageTerminate},
}

func allowedTransition(from, to Stage) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
