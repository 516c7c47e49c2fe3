package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos/testutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/sources"
	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	domainnotes "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/ctxutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime/bus"
)

type fakeGenerator struct {
	note types.GeneratedNote
	err  error
}

func (f *fakeGenerator) AggregateAndSynthesize(context.Context, types.InboundEvent, types.TenantRef) (types.GeneratedNote, error) {
	return f.note, f.err
}

type fakeMemberWriter struct {
	writes []sources.NoteWrite
	err    error
}

func (f *fakeMemberWriter) CreateNote(_ context.Context, _ types.TenantRef, n sources.NoteWrite) (string, error) {
	f.writes = append(f.writes, n)
	if f.err != nil {
		return "", f.err
	}
	return "777", nil
}

type failingNoteRepo struct {
	repos.AINoteRepo
}

func (failingNoteRepo) Create(dbctx.Context, *types.AINote) (*types.AINote, error) {
	return nil, errors.New("disk full")
}

type noteFixture struct {
	svc    NoteService
	notes  repos.AINoteRepo
	audits repos.AuditLogRepo
	events *bus.MemoryBus
	writer *fakeMemberWriter
	gen    *fakeGenerator
	tenant types.TenantRef
}

func sampleNote(personID, famID uuid.UUID) types.GeneratedNote {
	return types.GeneratedNote{
		VisitorFullName:  "Ada Obi",
		ConfidenceScore:  0.6,
		AIGeneratedLabel: true,
		PersonID:         personID.String(),
		FamID:            famID.String(),
		TaskID:           "task-1",
		Tenant:           "grace",
		ScenarioType:     types.ScenarioIndividualNew,
		RawContent:       "## Visitor Information",
	}
}

func newNoteFixture(t *testing.T, noteRepo func(repos.AINoteRepo) repos.AINoteRepo) noteFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	f := noteFixture{
		notes:  repos.NewAINoteRepo(db, log),
		audits: repos.NewAuditLogRepo(db, log),
		events: bus.NewMemoryBus(),
		writer: &fakeMemberWriter{},
		gen:    &fakeGenerator{},
		tenant: types.TenantRef{Identifier: "grace", Schema: "tenant_grace"},
	}
	repo := f.notes
	if noteRepo != nil {
		repo = noteRepo(repo)
	}
	f.svc = NewNoteService(log, f.gen, repo, f.writer, NewAuditRecorder(f.audits, log), f.events, nil, NoteServiceConfig{
		AuthorID:         uuid.MustParse("00000000-0000-0000-0000-00000000a1a1"),
		Model:            "test-model",
		WriteMemberNotes: true,
	})
	return f
}

func TestNoteServiceGeneratePersistsEverywhere(t *testing.T) {
	f := newNoteFixture(t, nil)
	person, fam := uuid.New(), uuid.New()
	f.gen.note = sampleNote(person, fam)

	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: "admin-1", Method: "POST", Endpoint: "/api/followup/notes"})
	res, err := f.svc.Generate(dbctx.New(ctx), types.InboundEvent{}, f.tenant)
	require.NoError(t, err)
	require.NotNil(t, res.Record)

	rec := res.Record
	assert.Equal(t, "AI Visitor Follow-up - Ada Obi", rec.Title)
	assert.Equal(t, person, rec.RecipientID)
	require.NotNil(t, rec.RecipientFamilyID)
	assert.Equal(t, fam, *rec.RecipientFamilyID)
	assert.Equal(t, "00000000-0000-0000-0000-00000000a1a1", rec.PersonID.String())
	assert.Equal(t, "777", rec.ExternalNoteID)
	assert.Equal(t, domainnotes.ReviewStatusPending, rec.AIReviewStatus)
	assert.Contains(t, string(rec.Meta), `"confidence_score":0.6`)

	stored, err := f.notes.GetByID(dbctx.New(ctx), "grace", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "777", stored.ExternalNoteID)

	require.Len(t, f.writer.writes, 1)
	w := f.writer.writes[0]
	assert.Equal(t, MemberNoteType, w.Type)
	assert.Equal(t, rec.ID.String(), w.Meta["ai_note_id"])

	audits, err := f.audits.ListByResource(dbctx.New(ctx), ResourceTypeNote, rec.ID.String(), 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.True(t, audits[0].Success)
	assert.Equal(t, "admin-1", audits[0].UserID)
	assert.Equal(t, "/api/followup/notes", audits[0].Endpoint)

	events := f.events.Published()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventNoteGenerated, events[0].Type)
	assert.Equal(t, rec.ID.String(), events[0].Data["note_id"])
}

func TestNoteServiceMemberWriteFailureIsNotFatal(t *testing.T) {
	f := newNoteFixture(t, nil)
	f.writer.err = errors.New("tenant db down")
	f.gen.note = sampleNote(uuid.New(), uuid.New())

	res, err := f.svc.Generate(dbctx.New(context.Background()), types.InboundEvent{}, f.tenant)
	require.NoError(t, err)
	assert.Empty(t, res.Record.ExternalNoteID)
	assert.Len(t, f.writer.writes, 1)
}

func TestNoteServicePersistFailure(t *testing.T) {
	f := newNoteFixture(t, func(r repos.AINoteRepo) repos.AINoteRepo { return failingNoteRepo{r} })
	person := uuid.New()
	f.gen.note = sampleNote(person, uuid.New())

	res, err := f.svc.Generate(dbctx.New(context.Background()), types.InboundEvent{}, f.tenant)
	require.ErrorIs(t, err, types.ErrPersistFailed)
	require.NotNil(t, res)
	assert.Equal(t, "Ada Obi", res.Note.VisitorFullName, "the generated note is still returned")
	assert.Nil(t, res.Record)
	assert.Empty(t, f.writer.writes)

	audits, err := f.audits.ListByResource(dbctx.New(context.Background()), ResourceTypeNote, person.String(), 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.False(t, audits[0].Success)
	assert.Contains(t, audits[0].ErrorMessage, "disk full")

	events := f.events.Published()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventNotePersistFailed, events[0].Type)
}

func TestNoteServiceValidationErrorsSkipPersistence(t *testing.T) {
	f := newNoteFixture(t, nil)
	f.gen.err = types.NewValidationError("person_id", "person_id is required")

	res, err := f.svc.Generate(dbctx.New(context.Background()), types.InboundEvent{}, f.tenant)
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
	assert.Nil(t, res)
	assert.Empty(t, f.events.Published())
}

func TestNoteServiceGetAndList(t *testing.T) {
	f := newNoteFixture(t, nil)
	person := uuid.New()
	f.gen.note = sampleNote(person, uuid.New())
	dbc := dbctx.New(context.Background())

	res, err := f.svc.Generate(dbc, types.InboundEvent{}, f.tenant)
	require.NoError(t, err)

	got, err := f.svc.Get(dbc, f.tenant, res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Record.ID, got.ID)

	_, err = f.svc.Get(dbc, f.tenant, uuid.New())
	require.ErrorIs(t, err, types.ErrNotFound)

	list, err := f.svc.ListByPerson(dbc, f.tenant, person, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListByPerson(dbc, f.tenant, uuid.Nil, 10)
	assert.True(t, types.IsValidationError(err))
}

func newFeedbackFixture(t *testing.T) (FeedbackService, *types.AINote, *bus.MemoryBus) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	note := testutil.SeedNote(t, context.Background(), db, "grace", uuid.New(), time.Now().UTC(), "")
	events := bus.NewMemoryBus()
	svc := NewFeedbackService(log, repos.NewAINoteRepo(db, log), repos.NewAIFeedbackRepo(db, log), NewAuditRecorder(repos.NewAuditLogRepo(db, log), log), events)
	return svc, note, events
}

func TestFeedbackSubmitValidation(t *testing.T) {
	svc, note, _ := newFeedbackFixture(t)
	dbc := dbctx.New(context.Background())
	tenant := types.TenantRef{Identifier: "grace", Schema: "tenant_grace"}

	cases := map[string]FeedbackInput{
		"missing note":     {Helpfulness: "yes"},
		"bad helpfulness":  {NoteID: note.ID, Helpfulness: "maybe"},
		"comment too long": {NoteID: note.ID, Helpfulness: "no", Comment: strings.Repeat("x", domainnotes.MaxCommentLength+1)},
	}
	for name, in := range cases {
		_, err := svc.Submit(dbc, tenant, in)
		assert.True(t, types.IsValidationError(err), name)
	}

	_, err := svc.Submit(dbc, tenant, FeedbackInput{NoteID: uuid.New(), Helpfulness: "yes"})
	require.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.Submit(dbc, types.TenantRef{Identifier: "other", Schema: "tenant_other"}, FeedbackInput{NoteID: note.ID, Helpfulness: "yes"})
	require.ErrorIs(t, err, types.ErrNotFound, "feedback cannot cross tenants")
}

func TestFeedbackSubmitAndStats(t *testing.T) {
	svc, note, events := newFeedbackFixture(t)
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: "admin-7"})
	dbc := dbctx.New(ctx)
	tenant := types.TenantRef{Identifier: "grace", Schema: "tenant_grace"}

	fb, err := svc.Submit(dbc, tenant, FeedbackInput{NoteID: note.ID, Helpfulness: " Partially ", Comment: "close"})
	require.NoError(t, err)
	assert.Equal(t, domainnotes.HelpfulnessPartially, fb.Helpfulness)
	assert.Equal(t, "admin-7", fb.AdminID)
	require.NotNil(t, fb.PersonID)
	assert.Equal(t, note.RecipientID, *fb.PersonID)

	_, err = svc.Submit(dbc, tenant, FeedbackInput{NoteID: note.ID, Helpfulness: "yes"})
	require.NoError(t, err)

	withFb, err := svc.ForNote(dbc, tenant, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, withFb.Note.ID)
	assert.Len(t, withFb.Feedback, 2)

	stats, err := svc.Stats(dbc, tenant)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Helpfulness[domainnotes.HelpfulnessYes])
	assert.Equal(t, int64(1), stats.Helpfulness[domainnotes.HelpfulnessPartially])

	require.Len(t, events.Published(), 2)
	assert.Equal(t, realtime.EventFeedbackSubmitted, events.Published()[0].Type)

	_, err = svc.ForNote(dbc, tenant, uuid.New())
	require.ErrorIs(t, err, types.ErrNotFound)
}
