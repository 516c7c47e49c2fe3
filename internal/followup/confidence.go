package followup

import (
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

const (
	baseConfidence       = 0.5
	failedBranchPenalty  = 0.1
	weightWelcomeForm    = 0.15
	weightNotes          = 0.1
	weightSupportingData = 0.05
)

// confidenceScore rewards data completeness and penalizes failed analysis
// branches. The result is always within the note's confidence bounds.
func confidenceScore(vc domain.VisitorContext, failedBranches int) float64 {
	score := baseConfidence
	if vc.HasWelcomeForm() {
		score += weightWelcomeForm
	}
	for _, present := range []bool{
		len(vc.FirstTimerNotes) > 0,
		len(vc.PrayerRequests) > 0,
		len(vc.ExistingFollowupNotes) > 0,
	} {
		if present {
			score += weightNotes
		}
	}
	for _, present := range []bool{
		len(vc.FeedbackFields) > 0,
		len(vc.PublicTeams) > 0,
		len(vc.PublicGroups) > 0,
		len(vc.UpcomingEvents) > 0,
	} {
		if present {
			score += weightSupportingData
		}
	}
	score -= float64(failedBranches) * failedBranchPenalty
	return clamp(score, domain.ConfidenceFloor, domain.ConfidenceCeiling)
}

func dataSourcesUsed(vc domain.VisitorContext) []string {
	sources := []string{"visitor_profile"}
	add := func(ok bool, name string) {
		if ok {
			sources = append(sources, name)
		}
	}
	add(vc.HasWelcomeForm(), taskWelcomeForm)
	add(len(vc.FirstTimerNotes) > 0, taskFirstTimerNotes)
	add(len(vc.PrayerRequests) > 0, taskPrayerRequests)
	add(len(vc.ExistingFollowupNotes) > 0, taskExistingNotes)
	add(len(vc.FeedbackFields) > 0, taskFeedbackFields)
	add(len(vc.PublicTeams) > 0, taskPublicTeams)
	add(len(vc.PublicGroups) > 0, taskPublicGroups)
	add(len(vc.UpcomingEvents) > 0, taskUpcomingEvents)
	return sources
}
