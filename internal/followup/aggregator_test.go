package followup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

func newTestAggregator(m MemberSource, cal CalendarSource, con ConnectSource) *Aggregator {
	return NewAggregator(m, cal, con, nil, WithClock(fixedClock), WithConcurrency(4))
}

func TestAggregateFamilyNewFetchPlan(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextFamily, domain.FamilyHistoryNew)
	ev.NewFamilyMemberIDs = []string{"M1"}
	sc := Resolve(ev)

	m := &fakeMembers{
		profile:  testProfile(ev.PersonID),
		profiles: []domain.Person{*testProfile(ev.PersonID), {FirstName: "Kid", DOB: dob(7)}},
	}
	cal := &fakeCalendar{events: []domain.Event{{ID: "e1", Title: "Newcomer lunch", StartTime: fixedNow.Add(48 * time.Hour)}}}
	con := &fakeConnect{
		teams:  []domain.Team{{ID: "t1", Name: "Greeters"}},
		groups: []domain.Group{{ID: "g1", Name: "Young Families", Privacy: "Public"}},
	}

	vc, err := newTestAggregator(m, cal, con).Aggregate(context.Background(), sc, testTenant())
	require.NoError(t, err)

	require.Len(t, m.called(taskFamilyMembers), 1)
	assert.Equal(t, []string{ev.PersonID.String(), "M1"}, m.called(taskFamilyMembers)[0])
	assert.Len(t, m.called(taskFirstTimerNotes), 1)
	assert.Len(t, m.called(taskPrayerRequests), 1)
	assert.Len(t, m.called(taskFeedbackFields), 1)
	assert.Empty(t, m.called(taskExistingNotes))
	assert.Empty(t, m.called("family_by_fam"))
	assert.Equal(t, domain.DefaultEventsTimeframeDays, cal.days)

	assert.Len(t, vc.FamilyMembers, 2)
	assert.Len(t, vc.PublicTeams, 1)
	assert.Len(t, vc.PublicGroups, 1)
	assert.Len(t, vc.UpcomingEvents, 1)
	assert.Equal(t, domain.ScenarioFamilyNew, vc.ScenarioInfo.Type)
	assert.Equal(t, fixedNow, vc.CollectedAt)
}

func TestAggregateScenarioFanOut(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		ctx       domain.FamilyContext
		hist      domain.FamilyHistory
		called    []string
		notCalled []string
	}{
		{
			name:      "individual new",
			ctx:       domain.FamilyContextIndividual,
			hist:      domain.FamilyHistoryNew,
			called:    []string{taskFirstTimerNotes, taskPrayerRequests},
			notCalled: []string{taskFamilyMembers, "family_by_fam", taskExistingNotes},
		},
		{
			name:      "individual existing",
			ctx:       domain.FamilyContextIndividual,
			hist:      domain.FamilyHistoryExisting,
			called:    []string{taskFamilyMembers, taskExistingNotes, taskPrayerRequests},
			notCalled: []string{taskFirstTimerNotes, "family_by_fam"},
		},
		{
			name:      "family existing",
			ctx:       domain.FamilyContextFamily,
			hist:      domain.FamilyHistoryExisting,
			called:    []string{"family_by_fam", taskExistingNotes, taskPrayerRequests},
			notCalled: []string{taskFirstTimerNotes, taskFamilyMembers},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev := testEvent(tc.ctx, tc.hist)
			m := &fakeMembers{profile: testProfile(ev.PersonID)}
			_, err := newTestAggregator(m, &fakeCalendar{}, &fakeConnect{}).Aggregate(context.Background(), Resolve(ev), testTenant())
			require.NoError(t, err)
			for _, name := range append([]string{taskPrimaryVisitor, taskWelcomeForm, taskFeedbackFields}, tc.called...) {
				assert.Len(t, m.called(name), 1, name)
			}
			for _, name := range tc.notCalled {
				assert.Empty(t, m.called(name), name)
			}
		})
	}
}

func TestAggregateIsolatesSourceFailures(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	m := &fakeMembers{
		profile:     testProfile(ev.PersonID),
		prayers:     []domain.PrayerRequest{{ID: "p1"}},
		firstTimer:  []domain.FirstTimerNote{{ID: "f1"}},
		failures:    map[string]error{taskPrayerRequests: errSourceDown, taskWelcomeForm: errSourceDown},
		panicOnTask: taskFeedbackFields,
	}
	cal := &fakeCalendar{err: errSourceDown}
	con := &fakeConnect{teamsErr: errSourceDown, groups: []domain.Group{{ID: "g1", Name: "Prayer"}}}

	vc, err := newTestAggregator(m, cal, con).Aggregate(context.Background(), Resolve(ev), testTenant())
	require.NoError(t, err)

	assert.NotNil(t, vc.PrayerRequests)
	assert.Empty(t, vc.PrayerRequests)
	assert.NotNil(t, vc.FeedbackFields)
	assert.Empty(t, vc.FeedbackFields)
	assert.NotNil(t, vc.PublicTeams)
	assert.Empty(t, vc.PublicTeams)
	assert.NotNil(t, vc.UpcomingEvents)
	assert.Empty(t, vc.UpcomingEvents)
	assert.True(t, vc.WelcomeForm.IsEmpty())

	assert.Len(t, vc.FirstTimerNotes, 1)
	assert.Len(t, vc.PublicGroups, 1)
	assert.Equal(t, "Ada", vc.VisitorProfile.FirstName)
}

func TestAggregateAllSourcesFailingStillComplete(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextFamily, domain.FamilyHistoryExisting)
	m := &fakeMembers{
		profile: testProfile(ev.PersonID),
		failures: map[string]error{
			taskWelcomeForm:    errSourceDown,
			"family_by_fam":    errSourceDown,
			taskExistingNotes:  errSourceDown,
			taskPrayerRequests: errSourceDown,
			taskFeedbackFields: errSourceDown,
		},
	}
	vc, err := newTestAggregator(m, &fakeCalendar{err: errSourceDown}, &fakeConnect{teamsErr: errSourceDown, groupsErr: errSourceDown}).
		Aggregate(context.Background(), Resolve(ev), testTenant())
	require.NoError(t, err)

	for name, list := range map[string]any{
		"family_members":          vc.FamilyMembers,
		"first_timer_notes":       vc.FirstTimerNotes,
		"prayer_requests":         vc.PrayerRequests,
		"existing_followup_notes": vc.ExistingFollowupNotes,
		"feedback_fields":         vc.FeedbackFields,
		"public_teams":            vc.PublicTeams,
		"public_groups":           vc.PublicGroups,
		"upcoming_events":         vc.UpcomingEvents,
	} {
		assert.NotNil(t, list, name)
		assert.Empty(t, list, name)
	}
}

func TestAggregateMissingProfileIsValidationError(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	_, err := newTestAggregator(&fakeMembers{}, nil, nil).Aggregate(context.Background(), Resolve(ev), testTenant())
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.NotErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestAggregateProfileReadFailureIsRetryable(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	m := &fakeMembers{
		profile:  testProfile(ev.PersonID),
		failures: map[string]error{taskPrimaryVisitor: errSourceDown},
	}
	_, err := newTestAggregator(m, nil, nil).Aggregate(context.Background(), Resolve(ev), testTenant())
	require.Error(t, err)
	assert.False(t, domain.IsValidationError(err))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.ErrorIs(t, err, errSourceDown)
}

func TestAggregateProfileValidationErrorIsNotRetryable(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	m := &fakeMembers{
		profile:  testProfile(ev.PersonID),
		failures: map[string]error{taskPrimaryVisitor: domain.NewValidationError("tenant", "tenant is required")},
	}
	_, err := newTestAggregator(m, nil, nil).Aggregate(context.Background(), Resolve(ev), testTenant())
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.NotErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestAggregateIsIdempotent(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	m := &fakeMembers{
		profile: testProfile(ev.PersonID),
		form: &domain.WelcomeForm{
			SpiritualInfo: domain.WelcomeSpiritualInfo{PrayerRequest: "New job", Feedback: "Loved the music"},
			VisitInfo:     domain.WelcomeVisitInfo{BestContactTime: "Mornings"},
		},
		prayers: []domain.PrayerRequest{{ID: "p1", Title: "Prayer Request"}},
	}
	agg := newTestAggregator(m, &fakeCalendar{}, &fakeConnect{teams: []domain.Team{{ID: "t1"}}})
	sc := Resolve(ev)

	first, err := agg.Aggregate(context.Background(), sc, testTenant())
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), sc, testTenant())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, m.prayers, 1, "source slice must not be mutated by the merge")
}

func TestAggregateAppendsWelcomeFormRecords(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	pid := ev.PersonID.String()
	m := &fakeMembers{
		profile: testProfile(ev.PersonID),
		form: &domain.WelcomeForm{
			VisitInfo: domain.WelcomeVisitInfo{
				HowHeardAboutChurch:          "Friend",
				BestContactTime:              "Evenings",
				PreferredCommunicationMethod: "text",
				RecentlyRelocated:            true,
			},
			Interests: domain.WelcomeInterests{SmallGroup: true},
			SpiritualInfo: domain.WelcomeSpiritualInfo{
				PrayerRequest: "  Pray for my mother  ",
				Feedback:      "Great sermon",
				SpiritualNeed: "Community",
			},
		},
		firstTimer: []domain.FirstTimerNote{{ID: "note-1"}},
	}

	vc, err := newTestAggregator(m, nil, nil).Aggregate(context.Background(), Resolve(ev), testTenant())
	require.NoError(t, err)

	require.Len(t, vc.PrayerRequests, 1)
	assert.Equal(t, "welcome_form_prayer_"+pid, vc.PrayerRequests[0].ID)
	assert.Equal(t, "Pray for my mother", vc.PrayerRequests[0].Body)
	assert.Equal(t, domain.SourceWelcomeForm, vc.PrayerRequests[0].Source)

	require.Len(t, vc.FeedbackFields, 2)
	assert.Equal(t, "welcome_form_feedback_"+pid, vc.FeedbackFields[0].ID)
	assert.Equal(t, "positive", vc.FeedbackFields[0].Sentiment)
	assert.Equal(t, "welcome_form_spiritual_need_"+pid, vc.FeedbackFields[1].ID)

	require.Len(t, vc.FirstTimerNotes, 2)
	assert.Equal(t, "note-1", vc.FirstTimerNotes[0].ID)
	insight := vc.FirstTimerNotes[1]
	assert.Equal(t, "welcome_form_first_timer_"+pid, insight.ID)
	assert.Equal(t, "First-timer insights from welcome form:\n"+
		"• Heard about church through: Friend\n"+
		"• Best contact time: Evenings\n"+
		"• Preferred communication: text\n"+
		"• Recently relocated to the area\n"+
		"• Interested in small groups", insight.Body)
}

func TestAggregateSkipsWelcomeRecordsForUnplannedTasks(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryExisting)
	m := &fakeMembers{
		profile: testProfile(ev.PersonID),
		form:    &domain.WelcomeForm{VisitInfo: domain.WelcomeVisitInfo{ConsideringJoining: true}},
	}
	vc, err := newTestAggregator(m, nil, nil).Aggregate(context.Background(), Resolve(ev), testTenant())
	require.NoError(t, err)
	assert.Empty(t, vc.FirstTimerNotes)
}

func TestAggregateSerialConcurrencyStillRunsEverything(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	m := &fakeMembers{profile: testProfile(ev.PersonID)}
	agg := NewAggregator(m, nil, nil, nil, WithClock(fixedClock), WithConcurrency(1))
	_, err := agg.Aggregate(context.Background(), Resolve(ev), testTenant())
	require.NoError(t, err)
	assert.Len(t, m.called(taskFeedbackFields), 1)
	assert.Len(t, m.called(taskPrayerRequests), 1)
	assert.Equal(t, []any{uuid.MustParse("11111111-1111-1111-1111-111111111111")}, m.called(taskPrimaryVisitor))
}
