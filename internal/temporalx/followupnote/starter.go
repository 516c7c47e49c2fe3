package followupnote

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

type Started struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// Start validates ev and starts a workflow for it on taskQueue.
func Start(ctx context.Context, tc temporalsdkclient.Client, taskQueue string, ev domain.InboundEvent) (Started, error) {
	if tc == nil {
		return Started{}, fmt.Errorf("temporal: %w", domain.ErrNotConfigured)
	}
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return Started{}, err
	}
	tenant, err := domain.NewTenantRef(ev.Tenant)
	if err != nil {
		return Started{}, err
	}
	id := WorkflowID(tenant, ev)
	run, err := tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        id,
		TaskQueue: taskQueue,
	}, WorkflowName, Input{Event: ev})
	if err != nil {
		return Started{}, fmt.Errorf("start followup workflow: %w", err)
	}
	return Started{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}

func WorkflowID(tenant domain.TenantRef, ev domain.InboundEvent) string {
	return fmt.Sprintf("followup-note:%s:%s:%s", tenant.Identifier, ev.PersonID, ulid.Make())
}

// Starter binds Start to one client and task queue.
type Starter struct {
	Client    temporalsdkclient.Client
	TaskQueue string
}

func (s *Starter) Start(ctx context.Context, ev domain.InboundEvent) (Started, error) {
	return Start(ctx, s.Client, s.TaskQueue, ev)
}
