package followup

import (
	"encoding/json"
	"strings"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

type profilePromptInput struct {
	Name            string
	Email           string
	Phone           string
	MemberStatus    string
	WelcomeForm     string
	FirstTimerNotes string
}

type familyPromptInput struct {
	Scenario      string
	Facts         string
	FamilyMembers string
}

type sentimentPromptInput struct {
	FeedbackData string
}

type recommendationsPromptInput struct {
	Name           string
	Teams          string
	Groups         string
	Events         string
	WelcomeForm    string
	PrayerRequests string
}

func profileInput(vc domain.VisitorContext) profilePromptInput {
	p := vc.VisitorProfile
	in := profilePromptInput{
		Name:         p.FullName(),
		Email:        p.Email,
		Phone:        p.Phone,
		MemberStatus: p.MemberStatus,
	}
	if vc.HasWelcomeForm() {
		in.WelcomeForm = indentJSON(vc.WelcomeForm)
	}
	if len(vc.FirstTimerNotes) > 0 {
		in.FirstTimerNotes = indentJSON(vc.FirstTimerNotes)
	}
	return in
}

func familyInput(vc domain.VisitorContext, facts domain.FamilyAnalysis) familyPromptInput {
	in := familyPromptInput{
		Scenario: string(vc.ScenarioInfo.Type),
		Facts:    facts.Context,
	}
	if len(vc.FamilyMembers) > 0 {
		in.FamilyMembers = indentJSON(vc.FamilyMembers)
	}
	return in
}

func sentimentInput(vc domain.VisitorContext) sentimentPromptInput {
	var parts []string
	if vc.HasWelcomeForm() {
		parts = append(parts, "Welcome Form: "+compactJSON(vc.WelcomeForm))
	}
	if len(vc.FirstTimerNotes) > 0 {
		parts = append(parts, "First Timer Notes: "+compactJSON(vc.FirstTimerNotes))
	}
	if len(vc.PrayerRequests) > 0 {
		parts = append(parts, "Prayer Requests: "+compactJSON(vc.PrayerRequests))
	}
	if len(vc.ExistingFollowupNotes) > 0 {
		parts = append(parts, "Existing Notes: "+compactJSON(vc.ExistingFollowupNotes))
	}
	if len(vc.FeedbackFields) > 0 {
		parts = append(parts, "Feedback Fields: "+compactJSON(vc.FeedbackFields))
	}
	return sentimentPromptInput{FeedbackData: strings.Join(parts, "\n")}
}

func recommendationsInput(vc domain.VisitorContext) recommendationsPromptInput {
	teams := make([]string, 0, len(vc.PublicTeams))
	for _, t := range vc.PublicTeams {
		teams = append(teams, t.Name)
	}
	groups := make([]string, 0, len(vc.PublicGroups))
	for _, g := range vc.PublicGroups {
		groups = append(groups, g.Name)
	}
	events := make([]string, 0, len(vc.UpcomingEvents))
	for _, e := range vc.UpcomingEvents {
		events = append(events, e.Title+" ("+e.StartTime.Format("Mon Jan 2 15:04")+")")
	}
	in := recommendationsPromptInput{
		Name:   vc.VisitorProfile.FullName(),
		Teams:  compactJSON(teams),
		Groups: compactJSON(groups),
		Events: compactJSON(events),
	}
	if vc.HasWelcomeForm() {
		in.WelcomeForm = compactJSON(vc.WelcomeForm)
	}
	if len(vc.PrayerRequests) > 0 {
		in.PrayerRequests = compactJSON(vc.PrayerRequests)
	}
	return in
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
