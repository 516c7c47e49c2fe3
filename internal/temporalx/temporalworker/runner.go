package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/temporalx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/temporalx/followupnote"
)

type Runner struct {
	log   *logger.Logger
	cfg   temporalx.Config
	tc    temporalsdkclient.Client
	notes followupnote.NoteGenerator
}

func NewRunner(log *logger.Logger, cfg temporalx.Config, tc temporalsdkclient.Client, notes followupnote.NoteGenerator) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if notes == nil {
		return nil, fmt.Errorf("temporal worker missing note service")
	}
	return &Runner{log: log, cfg: cfg, tc: tc, notes: notes}, nil
}

// Start registers the follow-up workflow and starts polling. Start failures
// are retried until cfg.StartMaxWait elapses; a missing namespace is
// registered first when auto-registration is on.
func (r *Runner) Start(ctx context.Context) error {
	if r == nil || r.tc == nil {
		return fmt.Errorf("temporal worker not initialized")
	}
	cfg := r.cfg
	r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)

	attempts := 0
	w, err := backoff.Retry(ctx, func() (worker.Worker, error) {
		attempts++
		w := r.newWorker()
		err := w.Start()
		if err == nil {
			return w, nil
		}
		w.Stop()
		var nfe *serviceerror.NamespaceNotFound
		if errors.As(err, &nfe) {
			if !cfg.AutoRegisterNamespace {
				return nil, backoff.Permanent(fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, err))
			}
			if nsErr := temporalx.EnsureNamespace(ctx, cfg, r.log); nsErr != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", cfg.Namespace, "error", nsErr)
			}
		}
		return nil, err
	},
		backoff.WithBackOff(cfg.NewBackOff()),
		backoff.WithMaxElapsedTime(cfg.StartMaxWait),
		backoff.WithNotify(func(err error, wait time.Duration) {
			r.log.Warn("Temporal worker failed to start; retrying", "task_queue", cfg.TaskQueue, "wait_ms", wait.Milliseconds(), "error", err)
		}),
	)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempts)
	return nil
}

func (r *Runner) newWorker() worker.Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}

	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})

	acts := &followupnote.Activities{Log: r.log, Notes: r.notes}
	w.RegisterWorkflowWithOptions(followupnote.Workflow, workflow.RegisterOptions{Name: followupnote.WorkflowName})
	w.RegisterActivityWithOptions(acts.Generate, activity.RegisterOptions{Name: followupnote.ActivityGenerate})
	return w
}
