package followup

import (
	"strings"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

// Records derived from the welcome form are appended to the list their task
// produced, so the prompts see form answers next to stored notes.

func welcomePrayerRequests(personID string, form *domain.WelcomeForm) []domain.PrayerRequest {
	text := strings.TrimSpace(form.SpiritualInfo.PrayerRequest)
	if text == "" {
		return nil
	}
	return []domain.PrayerRequest{{
		ID:        "welcome_form_prayer_" + personID,
		Title:     "Prayer Request from Welcome Form",
		Body:      text,
		CreatedAt: form.FormMetadata.CreatedAt,
		Urgency:   "normal",
		Category:  "general",
		Source:    domain.SourceWelcomeForm,
	}}
}

func welcomeFeedbackFields(personID string, form *domain.WelcomeForm) []domain.FeedbackField {
	var out []domain.FeedbackField
	add := func(kind, title, body, feedbackType, sentiment string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		out = append(out, domain.FeedbackField{
			ID:           "welcome_form_" + kind + "_" + personID,
			Title:        title,
			Body:         body,
			FeedbackType: feedbackType,
			Sentiment:    sentiment,
			CreatedAt:    form.FormMetadata.CreatedAt,
			Source:       domain.SourceWelcomeForm,
		})
	}
	si := form.SpiritualInfo
	add("feedback", "General Feedback from Welcome Form", si.Feedback, "general_feedback", "positive")
	add("spiritual_need", "Spiritual Need from Welcome Form", si.SpiritualNeed, "spiritual_feedback", "neutral")
	add("spiritual_challenge", "Spiritual Challenge from Welcome Form", si.SpiritualChallenge, "spiritual_feedback", "neutral")
	return out
}

func welcomeFirstTimerNotes(personID string, form *domain.WelcomeForm) []domain.FirstTimerNote {
	insights := firstTimerInsights(form)
	if len(insights) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("First-timer insights from welcome form:")
	for _, in := range insights {
		b.WriteString("\n• ")
		b.WriteString(in)
	}
	return []domain.FirstTimerNote{{
		ID:             "welcome_form_first_timer_" + personID,
		Title:          "First-Timer Insights from Welcome Form",
		Body:           b.String(),
		NoteType:       "first_timer",
		CreatedAt:      form.FormMetadata.CreatedAt,
		RelevanceScore: 1.0,
		Source:         domain.SourceWelcomeForm,
	}}
}

func firstTimerInsights(form *domain.WelcomeForm) []string {
	var out []string
	vi := form.VisitInfo
	if heard := strings.TrimSpace(vi.HowHeardAboutChurch); heard != "" && !isPlaceholder(heard, "other", "not_specified") {
		out = append(out, "Heard about church through: "+heard)
	}
	if t := strings.TrimSpace(vi.BestContactTime); t != "" && !isPlaceholder(t) {
		out = append(out, "Best contact time: "+t)
	}
	if m := strings.TrimSpace(vi.PreferredCommunicationMethod); m != "" && !isPlaceholder(m) {
		out = append(out, "Preferred communication: "+m)
	}
	if vi.RecentlyRelocated {
		out = append(out, "Recently relocated to the area")
	}
	if vi.ConsideringJoining {
		out = append(out, "Considering joining the church")
	}
	in := form.Interests
	if in.Membership {
		out = append(out, "Expressed interest in membership")
	}
	if in.Baptism {
		out = append(out, "Interested in baptism")
	}
	if in.BibleStudy {
		out = append(out, "Interested in bible study")
	}
	if in.SmallGroup {
		out = append(out, "Interested in small groups")
	}
	if form.SpiritualInfo.InterestInDailyDevotional {
		out = append(out, "Interested in daily devotionals")
	}
	return out
}

// isPlaceholder reports whether v is "none" or one of extra, ignoring case.
func isPlaceholder(v string, extra ...string) bool {
	v = strings.ToLower(v)
	if v == "none" {
		return true
	}
	for _, e := range extra {
		if v == e {
			return true
		}
	}
	return false
}
