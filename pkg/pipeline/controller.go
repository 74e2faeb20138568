package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/docpilot/pkg/adapter"
	"github.com/zen-systems/docpilot/pkg/trace"
)

// DefaultPassThreshold is the validation score at or above which a draft
// proceeds to completion.
const DefaultPassThreshold = 70

// Options configures a Controller.
type Options struct {
	// MaxReviewCycles bounds the review/validation loop. Required; there is
	// no implicit default.
	MaxReviewCycles int

	// PassThreshold overrides DefaultPassThreshold when > 0.
	PassThreshold int

	// Logger receives transition logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Recorder persists run and transition records. Defaults to a no-op.
	Recorder trace.Recorder
}

// Request is one pipeline invocation.
type Request struct {
	SourceText        string
	Prompt            string
	AdditionalContext map[string]string
}

// Response is the result of a successful run.
type Response struct {
	FinalAnswer string
	History     []Stage
	Score       int
	Metadata    Metadata
}

// Metadata summarizes a run for callers.
type Metadata struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	ReviewCycles int           `json:"review_cycles"`
	Usage        adapter.Usage `json:"usage"`
}

// Controller drives the fixed stage graph for one run at a time. Stage work
// is delegated to the injected handlers; the controller owns dispatch, the
// validation score gate, the review budget, and transition recording. A
// Controller is safe for concurrent runs since each run owns its Context.
type Controller struct {
	handlers  map[Stage]Handler
	threshold int
	maxCycles int
	logger    *slog.Logger
	recorder  trace.Recorder
}

// New creates a Controller over an immutable stage handler map. All six
// stages must be present and MaxReviewCycles must be positive.
func New(handlers map[Stage]Handler, opts Options) (*Controller, error) {
	if opts.MaxReviewCycles <= 0 {
		return nil, fmt.Errorf("max review cycles must be positive (got %d)", opts.MaxReviewCycles)
	}
	for _, stage := range []Stage{StageManager, StageEnhancement, StageProcessing, StageValidation, StageReview, StageCompletion} {
		if handlers[stage] == nil {
			return nil, fmt.Errorf("missing handler for stage %s", stage)
		}
	}

	threshold := opts.PassThreshold
	if threshold <= 0 {
		threshold = DefaultPassThreshold
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var recorder trace.Recorder = trace.NopRecorder{}
	if opts.Recorder != nil {
		recorder = opts.Recorder
	}

	own := make(map[Stage]Handler, len(handlers))
	for stage, h := range handlers {
		own[stage] = h
	}

	return &Controller{
		handlers:  own,
		threshold: threshold,
		maxCycles: opts.MaxReviewCycles,
		logger:    logger,
		recorder:  recorder,
	}, nil
}

// Run executes one pipeline run to termination. On failure the returned error
// is a *RunError carrying the failing stage, the partial history, and the
// last known context.
func (c *Controller) Run(ctx context.Context, req Request) (*Response, error) {
	runID := uuid.NewString()
	started := time.Now().UTC()

	rc := &Context{
		SourceText:        req.SourceText,
		OriginalPrompt:    req.Prompt,
		AdditionalContext: req.AdditionalContext,
	}

	c.logger.Info("run started", "run", runID, "input_bytes", rc.Size())

	cycles := 0
	state := StageManager
	for {
		if err := ctx.Err(); err != nil {
			return nil, c.halt(runID, started, state, rc, cycles, err)
		}

		rc.History = append(rc.History, state)

		res, err := c.handlers[state].Run(ctx, rc)
		if err != nil {
			return nil, c.halt(runID, started, state, rc, cycles, err)
		}

		c.record(runID, state, rc, res.Note)

		next, err := c.route(state, res, rc, &cycles)
		if err != nil {
			return nil, c.halt(runID, started, state, rc, cycles, err)
		}
		if next == StageTerminate {
			break
		}
		state = next
	}

	finished := time.Now().UTC()
	c.finishRun(runID, started, finished, rc, cycles, "completed", nil)

	return &Response{
		FinalAnswer: rc.FinalAnswer,
		History:     rc.History,
		Score:       rc.ValidationScore,
		Metadata: Metadata{
			RunID:        runID,
			StartedAt:    started,
			FinishedAt:   finished,
			ReviewCycles: cycles,
			Usage:        rc.Usage,
		},
	}, nil
}

// route resolves the next stage from a handler result. Validation routing is
// the score gate: at or above the threshold the run proceeds to completion,
// below it the run loops through review until the budget runs out.
func (c *Controller) route(state Stage, res *Result, rc *Context, cycles *int) (Stage, error) {
	if state == StageValidation {
		if rc.ValidationScore >= c.threshold {
			return StageCompletion, nil
		}
		*cycles++
		if *cycles > c.maxCycles {
			return "", ErrReviewBudget
		}
		return StageReview, nil
	}

	next := res.Next
	if next == "" {
		return "", fmt.Errorf("stage %s returned no next stage", state)
	}
	if next != StageTerminate && !allowedTransition(state, next) {
		return "", fmt.Errorf("stage %s returned illegal transition to %s", state, next)
	}
	if next == StageTerminate && state != StageCompletion {
		return "", fmt.Errorf("stage %s may not terminate the run", state)
	}
	return next, nil
}

func (c *Controller) record(runID string, state Stage, rc *Context, note string) {
	now := time.Now().UTC()
	c.logger.Info("stage complete",
		"run", runID, "stage", state, "context_bytes", rc.Size(), "note", note)
	if err := c.recorder.RecordTransition(runID, trace.TransitionRecord{
		Stage:        string(state),
		Timestamp:    now,
		ContextBytes: rc.Size(),
		Note:         note,
	}); err != nil {
		c.logger.Warn("transition record failed", "run", runID, "stage", state, "error", err)
	}
}

func (c *Controller) halt(runID string, started time.Time, state Stage, rc *Context, cycles int, err error) error {
	runErr := &RunError{Stage: state, History: rc.History, Context: rc, Err: err}
	c.logger.Error("run halted", "run", runID, "stage", state, "error", err)
	c.finishRun(runID, started, time.Now().UTC(), rc, cycles, "failed", runErr)
	return runErr
}

func (c *Controller) finishRun(runID string, started, finished time.Time, rc *Context, cycles int, outcome string, runErr error) {
	rec := trace.RunRecord{
		ID:           runID,
		StartedAt:    started,
		FinishedAt:   finished,
		InputHash:    trace.HashInput(rc.SourceText, rc.OriginalPrompt),
		Outcome:      outcome,
		Score:        rc.ValidationScore,
		ReviewCycles: cycles,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := c.recorder.RecordRun(rec); err != nil {
		c.logger.Warn("run record failed", "run", runID, "error", err)
	}
}
