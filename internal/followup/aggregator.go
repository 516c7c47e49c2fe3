package followup

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

const (
	taskPrimaryVisitor  = "primary_visitor"
	taskWelcomeForm     = "visitor_welcome_form"
	taskFamilyMembers   = "family_members"
	taskFirstTimerNotes = "first_timer_notes"
	taskPrayerRequests  = "prayer_requests"
	taskExistingNotes   = "existing_followup_notes"
	taskFeedbackFields  = "feedback_fields"
	taskPublicTeams     = "public_teams"
	taskPublicGroups    = "public_groups"
	taskUpcomingEvents  = "upcoming_events"
)

const defaultAggregateConcurrency = 8

type fetchTask struct {
	name string
	run  func(ctx context.Context) (any, error)
}

// taskResult is the tagged outcome of one fetch. The merge reads results by
// name, never by completion order.
type taskResult struct {
	name  string
	value any
	err   error
	dur   time.Duration
}

func newTask[T any](name string, fn func(context.Context) (T, error)) fetchTask {
	return fetchTask{name: name, run: func(ctx context.Context) (any, error) { return fn(ctx) }}
}

type Aggregator struct {
	members  MemberSource
	calendar CalendarSource
	connect  ConnectSource
	log      *logger.Logger
	metrics  *observability.Metrics
	limit    int
	now      func() time.Time
}

type AggregatorOption func(*Aggregator)

// WithConcurrency bounds the number of in-flight fetches per pass.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

func WithAggregatorMetrics(m *observability.Metrics) AggregatorOption {
	return func(a *Aggregator) { a.metrics = m }
}

func NewAggregator(members MemberSource, calendar CalendarSource, connect ConnectSource, baseLog *logger.Logger, opts ...AggregatorOption) *Aggregator {
	if calendar == nil {
		calendar = emptyCalendar{}
	}
	if connect == nil {
		connect = emptyConnect{}
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	a := &Aggregator{
		members:  members,
		calendar: calendar,
		connect:  connect,
		log:      baseLog.With("service", "Aggregator"),
		limit:    defaultAggregateConcurrency,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate collects every source for the scenario and assembles the result.
// Optional sources degrade to empty values. A visitor that does not exist is a
// ValidationError; a failed visitor profile read wraps ErrSourceUnavailable.
func (a *Aggregator) Aggregate(ctx context.Context, sc domain.Scenario, tenant domain.TenantRef) (domain.VisitorContext, error) {
	results := a.run(ctx, a.plan(sc, tenant), tenant)
	if r := results[taskPrimaryVisitor]; r.err != nil {
		if domain.IsValidationError(r.err) {
			return domain.VisitorContext{}, r.err
		}
		return domain.VisitorContext{}, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, taskPrimaryVisitor, r.err)
	}
	return Assemble(a.merge(sc, tenant, results))
}

func (a *Aggregator) plan(sc domain.Scenario, tenant domain.TenantRef) []fetchTask {
	person := sc.PrimaryPersonID

	tasks := []fetchTask{
		newTask(taskPrimaryVisitor, func(ctx context.Context) (*domain.Person, error) {
			return a.members.GetProfile(ctx, tenant, person)
		}),
		newTask(taskWelcomeForm, func(ctx context.Context) (*domain.WelcomeForm, error) {
			return a.members.GetWelcomeForm(ctx, tenant, person)
		}),
	}

	prayers := newTask(taskPrayerRequests, func(ctx context.Context) ([]domain.PrayerRequest, error) {
		return a.members.GetPrayerRequests(ctx, tenant, person)
	})
	firstTimer := newTask(taskFirstTimerNotes, func(ctx context.Context) ([]domain.FirstTimerNote, error) {
		return a.members.GetFirstTimerNotes(ctx, tenant, person)
	})
	existing := newTask(taskExistingNotes, func(ctx context.Context) ([]domain.FollowupNote, error) {
		return a.members.GetExistingFollowupNotes(ctx, tenant, person)
	})
	profiles := newTask(taskFamilyMembers, func(ctx context.Context) ([]domain.Person, error) {
		return a.members.GetFamilyMemberProfiles(ctx, tenant, sc.RelatedIDs)
	})

	switch sc.Type {
	case domain.ScenarioIndividualExisting:
		tasks = append(tasks, profiles, existing, prayers)
	case domain.ScenarioFamilyNew:
		tasks = append(tasks, profiles, firstTimer, prayers)
	case domain.ScenarioFamilyExisting:
		tasks = append(tasks,
			newTask(taskFamilyMembers, func(ctx context.Context) ([]domain.Person, error) {
				return a.members.GetFamilyMembers(ctx, tenant, sc.FamID)
			}),
			existing,
			prayers,
		)
	default:
		tasks = append(tasks, firstTimer, prayers)
	}

	days := sc.EventsTimeframeDays()
	return append(tasks,
		newTask(taskFeedbackFields, func(ctx context.Context) ([]domain.FeedbackField, error) {
			return a.members.GetFeedbackFields(ctx, tenant, person)
		}),
		newTask(taskPublicTeams, func(ctx context.Context) ([]domain.Team, error) {
			return a.connect.GetPublicTeams(ctx, tenant)
		}),
		newTask(taskPublicGroups, func(ctx context.Context) ([]domain.Group, error) {
			return a.connect.GetPublicGroups(ctx, tenant)
		}),
		newTask(taskUpcomingEvents, func(ctx context.Context) ([]domain.Event, error) {
			return a.calendar.GetUpcomingEvents(ctx, tenant, days)
		}),
	)
}

// run launches every task and waits for all of them. Task functions never
// return an error to the group, so one failure cannot cancel the others.
func (a *Aggregator) run(ctx context.Context, tasks []fetchTask, tenant domain.TenantRef) map[string]taskResult {
	results := make([]taskResult, len(tasks))
	var g errgroup.Group
	g.SetLimit(a.limit)
	for i, t := range tasks {
		g.Go(func() error {
			results[i] = a.exec(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	byName := make(map[string]taskResult, len(results))
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = "failed"
			a.log.Warn("Error collecting "+r.name,
				"task", r.name,
				"tenant", tenant.Identifier,
				"error", r.err,
			)
		}
		a.metrics.ObserveSourceTask(r.name, status, r.dur)
		byName[r.name] = r
	}
	return byName
}

func (a *Aggregator) exec(ctx context.Context, t fetchTask) (res taskResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = taskResult{name: t.name, err: fmt.Errorf("panic in %s: %v", t.name, rec)}
		}
		res.dur = time.Since(start)
	}()
	v, err := t.run(ctx)
	return taskResult{name: t.name, value: v, err: err}
}

func resultOf[T any](results map[string]taskResult, name string) T {
	var zero T
	r, ok := results[name]
	if !ok || r.err != nil {
		return zero
	}
	v, ok := r.value.(T)
	if !ok {
		return zero
	}
	return v
}

func planned(results map[string]taskResult, name string) bool {
	_, ok := results[name]
	return ok
}

func (a *Aggregator) merge(sc domain.Scenario, tenant domain.TenantRef, results map[string]taskResult) domain.RawContext {
	raw := domain.RawContext{
		VisitorProfile:        resultOf[*domain.Person](results, taskPrimaryVisitor),
		WelcomeForm:           resultOf[*domain.WelcomeForm](results, taskWelcomeForm),
		FamilyMembers:         resultOf[[]domain.Person](results, taskFamilyMembers),
		FirstTimerNotes:       resultOf[[]domain.FirstTimerNote](results, taskFirstTimerNotes),
		PrayerRequests:        resultOf[[]domain.PrayerRequest](results, taskPrayerRequests),
		ExistingFollowupNotes: resultOf[[]domain.FollowupNote](results, taskExistingNotes),
		FeedbackFields:        resultOf[[]domain.FeedbackField](results, taskFeedbackFields),
		PublicTeams:           resultOf[[]domain.Team](results, taskPublicTeams),
		PublicGroups:          resultOf[[]domain.Group](results, taskPublicGroups),
		UpcomingEvents:        resultOf[[]domain.Event](results, taskUpcomingEvents),
		ScenarioInfo:          &sc,
		Tenant:                tenant,
		CollectedAt:           a.now().UTC(),
	}

	if raw.WelcomeForm != nil {
		pid := sc.PrimaryPersonID.String()
		if planned(results, taskPrayerRequests) {
			raw.PrayerRequests = append(slices.Clip(raw.PrayerRequests), welcomePrayerRequests(pid, raw.WelcomeForm)...)
		}
		if planned(results, taskFeedbackFields) {
			raw.FeedbackFields = append(slices.Clip(raw.FeedbackFields), welcomeFeedbackFields(pid, raw.WelcomeForm)...)
		}
		if planned(results, taskFirstTimerNotes) {
			raw.FirstTimerNotes = append(slices.Clip(raw.FirstTimerNotes), welcomeFirstTimerNotes(pid, raw.WelcomeForm)...)
		}
	}
	return raw
}
