package followup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

func TestAssembleFillsEmptySections(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	sc := Resolve(ev)
	vc, err := Assemble(domain.RawContext{
		VisitorProfile: testProfile(ev.PersonID),
		ScenarioInfo:   &sc,
		Tenant:         testTenant(),
		CollectedAt:    fixedNow,
	})
	require.NoError(t, err)

	assert.True(t, vc.WelcomeForm.IsEmpty())
	assert.False(t, vc.HasWelcomeForm())
	assert.False(t, vc.HasFeedbackData())
	assert.NotNil(t, vc.FamilyMembers)
	assert.NotNil(t, vc.FirstTimerNotes)
	assert.NotNil(t, vc.PrayerRequests)
	assert.NotNil(t, vc.ExistingFollowupNotes)
	assert.NotNil(t, vc.FeedbackFields)
	assert.NotNil(t, vc.PublicTeams)
	assert.NotNil(t, vc.PublicGroups)
	assert.NotNil(t, vc.UpcomingEvents)
	assert.Equal(t, fixedNow, vc.CollectedAt)
	assert.Equal(t, testTenant(), vc.Tenant)
}

func TestAssembleRequiresProfileAndScenario(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextIndividual, domain.FamilyHistoryNew)
	sc := Resolve(ev)

	_, err := Assemble(domain.RawContext{ScenarioInfo: &sc})
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "visitor_profile", ve.Field)

	_, err = Assemble(domain.RawContext{VisitorProfile: testProfile(ev.PersonID)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "scenario_info", ve.Field)
}

func TestAssembleDoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	ev := testEvent(domain.FamilyContextFamily, domain.FamilyHistoryNew)
	ev.NewFamilyMemberIDs = []string{"M1"}
	sc := Resolve(ev)
	teams := []domain.Team{{ID: "t1", Name: "Greeters"}}

	vc, err := Assemble(domain.RawContext{
		VisitorProfile: testProfile(ev.PersonID),
		PublicTeams:    teams,
		ScenarioInfo:   &sc,
	})
	require.NoError(t, err)

	teams[0].Name = "changed"
	sc.RelatedIDs[1] = "changed"
	assert.Equal(t, "Greeters", vc.PublicTeams[0].Name)
	assert.Equal(t, "M1", vc.ScenarioInfo.RelatedIDs[1])
}
