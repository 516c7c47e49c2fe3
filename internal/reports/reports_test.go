package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos/testutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/gcp"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime/bus"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
)

var (
	periodStart = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
)

func noteMeta(t *testing.T, n domain.GeneratedNote) string {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return string(b)
}

func row(t *testing.T, recipient uuid.UUID, at time.Time, n domain.GeneratedNote) *domain.AINote {
	return &domain.AINote{
		RecipientID:  recipient,
		ScenarioType: string(n.ScenarioType),
		Meta:         datatypes.JSON(noteMeta(t, n)),
		CreatedAt:    at,
	}
}

func rec(title string) domain.Recommendation {
	return domain.Recommendation{Type: "ministry", Title: title}
}

func TestSummarize(t *testing.T) {
	ada, ben, cara := uuid.New(), uuid.New(), uuid.New()

	rows := []*domain.AINote{
		row(t, ada, periodStart.Add(time.Hour), domain.GeneratedNote{
			VisitorFullName:                  "Ada Obi",
			ScenarioType:                     domain.ScenarioIndividualNew,
			ConfidenceScore:                  0.4,
			Profile:                          domain.ProfileAnalysis{Interests: []string{"Music"}},
			SentimentAnalysis:                domain.SentimentAnalysis{Overall: "Neutral"},
			ChurchIntegrationRecommendations: []domain.Recommendation{rec("Join choir")},
		}),
		// Newer note for Ada replaces the first.
		row(t, ada, periodStart.Add(48*time.Hour), domain.GeneratedNote{
			VisitorFullName:                  "Ada Obi",
			ScenarioType:                     domain.ScenarioIndividualNew,
			ConfidenceScore:                  0.8,
			Profile:                          domain.ProfileAnalysis{Interests: []string{"music", "Bible Study", "MUSIC"}},
			SentimentAnalysis:                domain.SentimentAnalysis{Overall: "Positive"},
			ChurchIntegrationRecommendations: []domain.Recommendation{rec("Join small group")},
		}),
		row(t, ben, periodStart.Add(24*time.Hour), domain.GeneratedNote{
			VisitorFullName:                "Ben Ade",
			ScenarioType:                   domain.ScenarioFamilyNew,
			ConfidenceScore:                0.6,
			Family:                         domain.FamilyAnalysis{MemberCount: 4},
			Profile:                        domain.ProfileAnalysis{Interests: []string{"music"}},
			SentimentAnalysis:              domain.SentimentAnalysis{Overall: "positive"},
			EventEngagementRecommendations: []domain.Recommendation{rec("Join small group"), rec("Family picnic")},
		}),
		{RecipientID: cara, Meta: datatypes.JSON("not json"), CreatedAt: periodStart},
		nil,
	}

	s := Summarize(rows, periodStart, periodEnd)

	assert.Equal(t, VisitorSummary{
		TotalVisitors:         2,
		IndividualEngagements: 1,
		FamilyEngagements:     1,
		FamilyMembers:         4,
		AverageConfidence:     0.7,
	}, s.Visitors)
	assert.Equal(t, map[string]float64{"music": 100, "bible study": 50}, s.InterestBreakdown)
	assert.Equal(t, map[string]int{"positive": 2}, s.SentimentBreakdown)
	assert.Equal(t, []RecommendationCount{
		{Title: "Join small group", Count: 2},
		{Title: "Family picnic", Count: 1},
	}, s.TopRecommendations)
	assert.Equal(t, 1, s.SkippedNotes)

	require.Len(t, s.Individuals, 2)
	assert.Equal(t, "Ada Obi", s.Individuals[0].Name)
	assert.Equal(t, ada.String(), s.Individuals[0].PersonID)
	assert.Equal(t, "Join small group", s.Individuals[0].NextStep)
	assert.Equal(t, "Ben Ade", s.Individuals[1].Name)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, periodStart, periodEnd)
	assert.Zero(t, s.Visitors)
	assert.NotNil(t, s.InterestBreakdown)
	assert.NotNil(t, s.TopRecommendations)
	assert.NotNil(t, s.Individuals)

	md, err := RenderMarkdown("grace", s)
	require.NoError(t, err)
	assert.Contains(t, md, "# Visitor Follow-up Summary: grace")
	assert.Contains(t, md, "Period: 2026-09-01 to 2026-10-01")
	assert.Contains(t, md, "No visitors in this period.")
}

func TestSummarizeCapsTopRecommendations(t *testing.T) {
	t.Parallel()

	var rows []*domain.AINote
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		rows = append(rows, row(t, uuid.New(), periodStart, domain.GeneratedNote{
			ScenarioType:                     domain.ScenarioIndividualNew,
			ChurchIntegrationRecommendations: []domain.Recommendation{rec(title)},
		}))
	}
	s := Summarize(rows, periodStart, periodEnd)
	require.Len(t, s.TopRecommendations, topRecommendationLimit)
	assert.Equal(t, "a", s.TopRecommendations[0].Title)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	s := Summary{
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		Visitors:           VisitorSummary{TotalVisitors: 2, IndividualEngagements: 2, AverageConfidence: 0.65},
		InterestBreakdown:  map[string]float64{"music": 50, "prayer": 100},
		SentimentBreakdown: map[string]int{"positive": 2},
		TopRecommendations: []RecommendationCount{{Title: "Join choir", Count: 2}},
		Individuals: []IndividualSummary{{
			Name:         "Ada Obi",
			ScenarioType: domain.ScenarioIndividualNew,
			Sentiment:    "positive",
			Confidence:   0.7,
			Interests:    []string{"music"},
		}},
	}
	md, err := RenderMarkdown("grace", s)
	require.NoError(t, err)
	assert.Contains(t, md, "- Total visitors: 2")
	assert.Contains(t, md, "- Average note confidence: 0.65")
	assert.Contains(t, md, "- prayer: 100.0%\n- music: 50.0%")
	assert.Contains(t, md, "1. Join choir (2)")
	assert.Contains(t, md, "### Ada Obi")
	assert.Contains(t, md, "- Next step: -")
}

type memStore struct {
	objects map[string][]byte
	err     error
}

func (m *memStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return "gs://reports/" + key, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (m *memStore) Close() error { return nil }

type serviceFixture struct {
	svc    Service
	events *bus.MemoryBus
	audits repos.AuditLogRepo
	dbc    dbctx.Context
	tenant domain.TenantRef
}

func newServiceFixture(t *testing.T, objects *memStore) serviceFixture {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	audits := repos.NewAuditLogRepo(gdb, log)
	events := bus.NewMemoryBus()

	ctx := context.Background()
	ada := uuid.New()
	testutil.SeedNote(t, ctx, gdb, "grace", ada, periodStart.Add(time.Hour), noteMeta(t, domain.GeneratedNote{
		VisitorFullName:   "Ada Obi",
		ScenarioType:      domain.ScenarioIndividualNew,
		ConfidenceScore:   0.6,
		SentimentAnalysis: domain.SentimentAnalysis{Overall: "Positive"},
	}))
	testutil.SeedNote(t, ctx, gdb, "grace", uuid.New(), periodEnd.Add(time.Hour), "")
	testutil.SeedNote(t, ctx, gdb, "other", uuid.New(), periodStart.Add(time.Hour), "")

	var store gcp.ObjectStore
	if objects != nil {
		store = objects
	}
	svc := NewService(
		log,
		repos.NewAINoteRepo(gdb, log),
		repos.NewReportRepo(gdb, log),
		store,
		services.NewAuditRecorder(audits, log),
		events,
	)
	return serviceFixture{
		svc:    svc,
		events: events,
		audits: audits,
		dbc:    dbctx.New(ctx),
		tenant: domain.TenantRef{Identifier: "grace", Schema: "tenant_grace"},
	}
}

func TestServiceBuild(t *testing.T) {
	store := &memStore{}
	f := newServiceFixture(t, store)

	report, err := f.svc.Build(f.dbc, f.tenant, periodStart, periodEnd)
	require.NoError(t, err)
	_, err = ulid.ParseStrict(report.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.NoteCount)
	assert.Equal(t, "gs://reports/grace/"+report.ID+".json", report.StorageURI)
	assert.Contains(t, report.Markdown, "### Ada Obi")
	assert.Contains(t, store.objects, "grace/"+report.ID+".md")

	var summary Summary
	require.NoError(t, json.Unmarshal(report.Summary, &summary))
	assert.Equal(t, 1, summary.Visitors.TotalVisitors)
	assert.Equal(t, map[string]int{"positive": 1}, summary.SentimentBreakdown)

	got, err := f.svc.Get(f.dbc, f.tenant, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.StorageURI, got.StorageURI)

	_, err = f.svc.Get(f.dbc, domain.TenantRef{Identifier: "other"}, report.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	published := f.events.Published()
	require.Len(t, published, 1)
	assert.Equal(t, realtime.EventReportBuilt, published[0].Type)
	assert.Equal(t, report.ID, published[0].Data["report_id"])

	audits, err := f.audits.ListByResource(f.dbc, ResourceTypeReport, report.ID, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.True(t, audits[0].Success)
}

func TestServiceBuildUploadFailureKeepsReport(t *testing.T) {
	f := newServiceFixture(t, &memStore{err: errors.New("bucket gone")})

	report, err := f.svc.Build(f.dbc, f.tenant, periodStart, periodEnd)
	require.NoError(t, err)
	assert.Empty(t, report.StorageURI)

	got, err := f.svc.Get(f.dbc, f.tenant, report.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.NoteCount)
}

func TestServiceBuildWithoutStore(t *testing.T) {
	f := newServiceFixture(t, nil)

	report, err := f.svc.Build(f.dbc, f.tenant, periodStart, periodEnd)
	require.NoError(t, err)
	assert.Empty(t, report.StorageURI)
}

func TestServiceValidation(t *testing.T) {
	f := newServiceFixture(t, nil)

	cases := []struct {
		name     string
		tenant   domain.TenantRef
		from, to time.Time
	}{
		{name: "no tenant", from: periodStart, to: periodEnd},
		{name: "inverted", tenant: f.tenant, from: periodEnd, to: periodStart},
		{name: "empty", tenant: f.tenant, from: periodStart, to: periodStart},
		{name: "too long", tenant: f.tenant, from: periodStart, to: periodStart.AddDate(2, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Build(f.dbc, tc.tenant, tc.from, tc.to)
			assert.True(t, domain.IsValidationError(err), "got %v", err)
		})
	}

	_, err := f.svc.Get(f.dbc, f.tenant, "not-a-ulid")
	assert.True(t, domain.IsValidationError(err))

	_, err = f.svc.Get(f.dbc, f.tenant, ulid.Make().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
