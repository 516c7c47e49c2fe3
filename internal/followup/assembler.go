package followup

import (
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

// Assemble validates a merged record and returns a structurally complete
// context. Only a missing visitor profile or scenario is an error; any other
// absent section is filled with its empty value.
func Assemble(raw domain.RawContext) (domain.VisitorContext, error) {
	if raw.VisitorProfile == nil {
		return domain.VisitorContext{}, domain.NewValidationError("visitor_profile", "visitor profile not found")
	}
	if raw.ScenarioInfo == nil {
		return domain.VisitorContext{}, domain.NewValidationError("scenario_info", "scenario info is required")
	}

	vc := domain.VisitorContext{
		VisitorProfile:        *raw.VisitorProfile,
		FamilyMembers:         cloneOrEmpty(raw.FamilyMembers),
		FirstTimerNotes:       cloneOrEmpty(raw.FirstTimerNotes),
		PrayerRequests:        cloneOrEmpty(raw.PrayerRequests),
		ExistingFollowupNotes: cloneOrEmpty(raw.ExistingFollowupNotes),
		FeedbackFields:        cloneOrEmpty(raw.FeedbackFields),
		PublicTeams:           cloneOrEmpty(raw.PublicTeams),
		PublicGroups:          cloneOrEmpty(raw.PublicGroups),
		UpcomingEvents:        cloneOrEmpty(raw.UpcomingEvents),
		ScenarioInfo:          *raw.ScenarioInfo,
		Tenant:                raw.Tenant,
		CollectedAt:           raw.CollectedAt,
	}
	if raw.WelcomeForm != nil {
		vc.WelcomeForm = *raw.WelcomeForm
	}
	vc.ScenarioInfo.RelatedIDs = cloneOrEmpty(raw.ScenarioInfo.RelatedIDs)
	return vc, nil
}

func cloneOrEmpty[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
