package followupnote

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ErrTypeInvalidEvent marks activity failures that retrying cannot fix.
const ErrTypeInvalidEvent = "InvalidVisitorEvent"

// Workflow generates and stores one follow-up note. Source and LLM failures
// are absorbed inside the pipeline, so activity retries cover persistence and
// worker crashes.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        2 * time.Minute,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{ErrTypeInvalidEvent},
		},
	})

	var out Result
	if err := workflow.ExecuteActivity(ctx, ActivityGenerate, in).Get(ctx, &out); err != nil {
		return Result{}, err
	}
	workflow.GetLogger(ctx).Info("Follow-up note stored", "note_id", out.NoteID, "confidence", out.Confidence)
	return out, nil
}
