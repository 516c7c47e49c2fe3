package followup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

var errSourceDown = errors.New("source down")

var fixedNow = time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeMembers struct {
	mu    sync.Mutex
	calls map[string][]any

	profile     *domain.Person
	form        *domain.WelcomeForm
	family      []domain.Person
	profiles    []domain.Person
	firstTimer  []domain.FirstTimerNote
	prayers     []domain.PrayerRequest
	feedback    []domain.FeedbackField
	existing    []domain.FollowupNote
	failures    map[string]error
	panicOnTask string
}

func (f *fakeMembers) record(name string, arg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string][]any{}
	}
	f.calls[name] = append(f.calls[name], arg)
	if f.panicOnTask == name {
		panic("boom in " + name)
	}
	return f.failures[name]
}

func (f *fakeMembers) called(name string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeMembers) GetProfile(_ context.Context, _ domain.TenantRef, id uuid.UUID) (*domain.Person, error) {
	if err := f.record(taskPrimaryVisitor, id); err != nil {
		return nil, err
	}
	return f.profile, nil
}

func (f *fakeMembers) GetWelcomeForm(_ context.Context, _ domain.TenantRef, id uuid.UUID) (*domain.WelcomeForm, error) {
	if err := f.record(taskWelcomeForm, id); err != nil {
		return nil, err
	}
	return f.form, nil
}

func (f *fakeMembers) GetFamilyMembers(_ context.Context, _ domain.TenantRef, famID uuid.UUID) ([]domain.Person, error) {
	if err := f.record("family_by_fam", famID); err != nil {
		return nil, err
	}
	return f.family, nil
}

func (f *fakeMembers) GetFamilyMemberProfiles(_ context.Context, _ domain.TenantRef, ids []string) ([]domain.Person, error) {
	if err := f.record(taskFamilyMembers, append([]string(nil), ids...)); err != nil {
		return nil, err
	}
	return f.profiles, nil
}

func (f *fakeMembers) GetFirstTimerNotes(_ context.Context, _ domain.TenantRef, id uuid.UUID) ([]domain.FirstTimerNote, error) {
	if err := f.record(taskFirstTimerNotes, id); err != nil {
		return nil, err
	}
	return f.firstTimer, nil
}

func (f *fakeMembers) GetPrayerRequests(_ context.Context, _ domain.TenantRef, id uuid.UUID) ([]domain.PrayerRequest, error) {
	if err := f.record(taskPrayerRequests, id); err != nil {
		return nil, err
	}
	return f.prayers, nil
}

func (f *fakeMembers) GetFeedbackFields(_ context.Context, _ domain.TenantRef, id uuid.UUID) ([]domain.FeedbackField, error) {
	if err := f.record(taskFeedbackFields, id); err != nil {
		return nil, err
	}
	return f.feedback, nil
}

func (f *fakeMembers) GetExistingFollowupNotes(_ context.Context, _ domain.TenantRef, id uuid.UUID) ([]domain.FollowupNote, error) {
	if err := f.record(taskExistingNotes, id); err != nil {
		return nil, err
	}
	return f.existing, nil
}

type fakeCalendar struct {
	events []domain.Event
	err    error
	days   int
}

func (f *fakeCalendar) GetUpcomingEvents(_ context.Context, _ domain.TenantRef, days int) ([]domain.Event, error) {
	f.days = days
	return f.events, f.err
}

type fakeConnect struct {
	teams     []domain.Team
	groups    []domain.Group
	teamsErr  error
	groupsErr error
}

func (f *fakeConnect) GetPublicTeams(context.Context, domain.TenantRef) ([]domain.Team, error) {
	return f.teams, f.teamsErr
}

func (f *fakeConnect) GetPublicGroups(context.Context, domain.TenantRef) ([]domain.Group, error) {
	return f.groups, f.groupsErr
}

type llmReply struct {
	text string
	err  error
}

// fakeLLM answers by branch, recognised from the JSON keys each prompt asks for.
type fakeLLM struct {
	mu      sync.Mutex
	replies map[string]llmReply
	prompts map[string]string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ float64) (string, error) {
	branch := branchOf(prompt)
	f.mu.Lock()
	if f.prompts == nil {
		f.prompts = map[string]string{}
	}
	f.prompts[branch] = prompt
	r, ok := f.replies[branch]
	f.mu.Unlock()
	if !ok {
		return "", errors.New("no reply for " + branch)
	}
	return r.text, r.err
}

func (f *fakeLLM) prompt(branch string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[branch]
}

func branchOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "interests, ministry_areas"):
		return domain.AnalysisProfile
	case strings.Contains(prompt, "key: family_context"):
		return domain.AnalysisFamily
	case strings.Contains(prompt, "overall_sentiment, confidence"):
		return domain.AnalysisSentiment
	case strings.Contains(prompt, "community_integration, event_engagement"):
		return domain.AnalysisRecommendations
	}
	return "unknown"
}

func failingLLM() *fakeLLM {
	down := llmReply{err: errors.New("endpoint unavailable")}
	return &fakeLLM{replies: map[string]llmReply{
		domain.AnalysisProfile:         down,
		domain.AnalysisFamily:          down,
		domain.AnalysisSentiment:       down,
		domain.AnalysisRecommendations: down,
	}}
}

func healthyLLM() *fakeLLM {
	return &fakeLLM{replies: map[string]llmReply{
		domain.AnalysisProfile:   {text: `{"interests":["Worship","Youth"],"ministry_areas":["Music"],"life_stage":"Young professional","spiritual_background":"Returning","specific_needs":["Community"]}`},
		domain.AnalysisFamily:    {text: "```json\n{\"family_context\":\"A young couple new to town.\"}\n```"},
		domain.AnalysisSentiment: {text: `Here you go: {"overall_sentiment":"Positive","confidence":0.82,"key_emotions":["Hopeful"],"concerns":[],"positive_indicators":["Filled out form"]}`},
		domain.AnalysisRecommendations: {text: `{
			"community_integration": ["Invite to newcomer lunch", {"title":"Meet the worship team","description":"Introduce to music lead","priority":"high","team_id":"t1"}, "Third idea"],
			"event_engagement": ["Invite to Easter service"],
			"personal_needs": ["Pray with them about the move", "Second need"],
			"feedback_insights": null
		}`},
	}}
}

func testEvent(ctx domain.FamilyContext, hist domain.FamilyHistory) domain.InboundEvent {
	person := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	return domain.InboundEvent{
		Tenant:        "demo",
		PersonID:      person,
		FamID:         uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		FamHeadID:     person,
		FamilyContext: ctx,
		FamilyHistory: hist,
	}
}

func testTenant() domain.TenantRef {
	return domain.TenantRef{Identifier: "demo", Schema: "tenant_demo"}
}

func testProfile(id uuid.UUID) *domain.Person {
	return &domain.Person{ID: id, FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Phone: "+15550100"}
}

func dob(years int) *time.Time {
	t := fixedNow.AddDate(-years, 0, -1)
	return &t
}
