package notes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos/testutil"
	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	domainnotes "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
)

func TestAINoteRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewAINoteRepo(db, testutil.Logger(t))

	recipient := uuid.New()
	created, err := repo.Create(dbc, &types.AINote{
		Tenant:      "grace",
		Title:       "AI Visitor Follow-up",
		PersonID:    uuid.New(),
		RecipientID: recipient,
		NotesBody:   "## Visitor",
		Meta:        datatypes.JSON([]byte(`{"confidence_score":0.6}`)),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, domainnotes.ReviewStatusPending, created.AIReviewStatus)

	got, err := repo.GetByID(dbc, "grace", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "## Visitor", got.NotesBody)
	assert.JSONEq(t, `{"confidence_score":0.6}`, string(got.Meta))

	other, err := repo.GetByID(dbc, "other", created.ID)
	require.NoError(t, err)
	assert.Nil(t, other, "notes are scoped to their tenant")

	missing, err := repo.GetByID(dbc, "grace", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpdateFields(dbc, created.ID, map[string]interface{}{"external_note_id": "42"}))
	got, err = repo.GetByID(dbc, "grace", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "42", got.ExternalNoteID)
}

func TestAINoteRepoListing(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAINoteRepo(db, testutil.Logger(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	person := uuid.New()
	older := testutil.SeedNote(t, ctx, tx, "grace", person, base, "")
	newer := testutil.SeedNote(t, ctx, tx, "grace", person, base.Add(2*time.Hour), "")
	testutil.SeedNote(t, ctx, tx, "grace", uuid.New(), base.Add(time.Hour), "")
	testutil.SeedNote(t, ctx, tx, "other", person, base.Add(time.Hour), "")

	list, err := repo.ListByPerson(dbc, "grace", person, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	limited, err := repo.ListByPerson(dbc, "grace", person, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	inRange, err := repo.ListInRange(dbc, "grace", base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, inRange, 2, "upper bound is exclusive")
	assert.Equal(t, older.ID, inRange[0].ID)

	empty, err := repo.ListInRange(dbc, "grace", base, base)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAIFeedbackRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewAIFeedbackRepo(db, testutil.Logger(t))

	note := testutil.SeedNote(t, ctx, db, "grace", uuid.New(), time.Now().UTC(), "")
	other := testutil.SeedNote(t, ctx, db, "grace", uuid.New(), time.Now().UTC(), "")

	fb, err := repo.Create(dbc, &types.AIFeedback{
		Tenant:      "grace",
		NoteID:      note.ID,
		Helpfulness: domainnotes.HelpfulnessYes,
		UserComment: "spot on",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, fb.ID)
	assert.Equal(t, domainnotes.FeedbackEntityNote, fb.EntityType)

	testutil.SeedFeedback(t, ctx, db, "grace", note.ID, domainnotes.HelpfulnessPartially)
	testutil.SeedFeedback(t, ctx, db, "grace", other.ID, domainnotes.HelpfulnessYes)
	testutil.SeedFeedback(t, ctx, db, "other", other.ID, domainnotes.HelpfulnessNo)

	list, err := repo.ListByNote(dbc, "grace", note.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	stats, err := repo.Stats(dbc, "grace")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, map[string]int64{
		domainnotes.HelpfulnessYes:       2,
		domainnotes.HelpfulnessNo:        0,
		domainnotes.HelpfulnessPartially: 1,
	}, stats.Helpfulness)

	none, err := repo.Stats(dbc, "nobody")
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Len(t, none.Helpfulness, 3)
}

func TestAuditLogRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewAuditLogRepo(db, testutil.Logger(t))

	noteID := uuid.NewString()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(dbc, &types.AIAuditLog{
			Tenant:       "grace",
			Action:       domainnotes.AuditActionGenerateNote,
			ResourceType: "ai_note",
			ResourceID:   noteID,
			Success:      true,
			Timestamp:    time.Date(2026, 1, 1, i, 0, 0, 0, time.UTC),
		}))
	}
	require.NoError(t, repo.Create(dbc, &types.AIAuditLog{Tenant: "grace", Action: domainnotes.AuditActionBuildReport}))

	rows, err := repo.ListByResource(dbc, "ai_note", noteID, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Timestamp.UTC().Hour())
	assert.False(t, rows[0].ID == uuid.Nil)
}

func TestReportRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.New(context.Background())
	repo := NewReportRepo(db, testutil.Logger(t))

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.Create(dbc, &types.FollowupReport{
		ID:          "01J00000000000000000000000",
		Tenant:      "grace",
		PeriodStart: from,
		PeriodEnd:   from.AddDate(0, 1, 0),
		NoteCount:   4,
		Summary:     datatypes.JSON([]byte(`{}`)),
		Markdown:    "# Report",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetStorageURI(dbc, "01J00000000000000000000000", "gs://bucket/grace/r.json"))

	got, err := repo.GetByID(dbc, "grace", "01J00000000000000000000000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.NoteCount)
	assert.Equal(t, "gs://bucket/grace/r.json", got.StorageURI)

	missing, err := repo.GetByID(dbc, "other", "01J00000000000000000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
