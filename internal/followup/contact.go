package followup

import (
	"strings"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

const (
	defaultContactTime   = "Weekday evenings (6-8 PM)"
	defaultContactMethod = "email"
)

var contactChannels = []string{"email", "phone", "text"}

// contactStrategy picks the best time and channel. Explicit welcome form
// answers win over the life stage heuristic, which wins over the default.
func contactStrategy(form domain.WelcomeForm, profile domain.ProfileAnalysis) domain.ContactStrategy {
	best, method := lifeStageContact(profile.LifeStage)

	if t := strings.TrimSpace(form.VisitInfo.BestContactTime); t != "" && !isPlaceholder(t, "not_specified") {
		best = t
	}
	if m := strings.TrimSpace(form.VisitInfo.PreferredCommunicationMethod); m != "" && !isPlaceholder(m, "not_specified") {
		method = strings.ToLower(m)
	}

	alternatives := make([]string, 0, len(contactChannels))
	for _, ch := range contactChannels {
		if ch != method {
			alternatives = append(alternatives, ch)
		}
	}
	return domain.ContactStrategy{BestTime: best, Method: method, Alternatives: alternatives}
}

func lifeStageContact(lifeStage string) (string, string) {
	stage := strings.ToLower(lifeStage)
	switch {
	case strings.Contains(stage, "young professional"):
		return "Weekday evenings (7-9 PM) or weekends", "text or email"
	case strings.Contains(stage, "family"), strings.Contains(stage, "parent"):
		return "Weekend mornings or weekday evenings after 7 PM", "email or phone"
	case strings.Contains(stage, "retiree"), strings.Contains(stage, "senior"):
		return "Weekday mornings (9 AM - 12 PM)", "phone or email"
	}
	return defaultContactTime, defaultContactMethod
}
