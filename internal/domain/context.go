package domain

import "time"

// RawContext is what the aggregator merged, before validation. Nil slices and
// a nil form are allowed here; the assembler replaces them with empty values.
type RawContext struct {
	VisitorProfile        *Person
	WelcomeForm           *WelcomeForm
	FamilyMembers         []Person
	FirstTimerNotes       []FirstTimerNote
	PrayerRequests        []PrayerRequest
	ExistingFollowupNotes []FollowupNote
	FeedbackFields        []FeedbackField
	PublicTeams           []Team
	PublicGroups          []Group
	UpcomingEvents        []Event
	ScenarioInfo          *Scenario
	Tenant                TenantRef
	CollectedAt           time.Time
}

// VisitorContext is the assembled, structurally complete input to synthesis.
// Every slice is non-nil.
type VisitorContext struct {
	VisitorProfile        Person           `json:"visitor_profile"`
	WelcomeForm           WelcomeForm      `json:"visitor_welcome_form"`
	FamilyMembers         []Person         `json:"family_members"`
	FirstTimerNotes       []FirstTimerNote `json:"first_timer_notes"`
	PrayerRequests        []PrayerRequest  `json:"prayer_requests"`
	ExistingFollowupNotes []FollowupNote   `json:"existing_followup_notes"`
	FeedbackFields        []FeedbackField  `json:"feedback_fields"`
	PublicTeams           []Team           `json:"public_teams"`
	PublicGroups          []Group          `json:"public_groups"`
	UpcomingEvents        []Event          `json:"upcoming_events"`
	ScenarioInfo          Scenario         `json:"scenario_info"`
	Tenant                TenantRef        `json:"tenant"`
	CollectedAt           time.Time        `json:"collection_timestamp"`
}

func (vc VisitorContext) HasWelcomeForm() bool { return !vc.WelcomeForm.IsEmpty() }

// HasFeedbackData reports whether any input carries visitor sentiment.
func (vc VisitorContext) HasFeedbackData() bool {
	return vc.HasWelcomeForm() ||
		len(vc.FirstTimerNotes) > 0 ||
		len(vc.PrayerRequests) > 0 ||
		len(vc.ExistingFollowupNotes) > 0 ||
		len(vc.FeedbackFields) > 0
}
