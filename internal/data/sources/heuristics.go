package sources

import "strings"

// Keyword heuristics used to enrich notes as they are read. All matching is
// case-insensitive substring matching.

var (
	prayerTitlePatterns     = []string{"Prayer Request", "Prayer", "Pray for", "Prayer Need"}
	firstTimerTitlePatterns = []string{"First Timer", "First-Timer", "First Visit", "New Visitor", "Welcome Note"}
	feedbackTitlePatterns   = []string{"Feedback", "Service Feedback", "Experience", "Rating", "Comment", "Suggestion"}
)

const (
	prayerNotesLimit     = 20
	firstTimerNotesLimit = 10
	feedbackNotesLimit   = 15
	followupNotesLimit   = 20
)

type keywordGroup struct {
	label    string
	keywords []string
}

var prayerCategories = []keywordGroup{
	{"health", []string{"health", "sick", "illness", "surgery", "medical", "healing"}},
	{"family", []string{"family", "marriage", "children", "relationship", "divorce"}},
	{"financial", []string{"financial", "job", "work", "money", "employment"}},
	{"spiritual", []string{"spiritual", "faith", "salvation", "growth", "discipleship"}},
}

var feedbackTypes = []keywordGroup{
	{"service_feedback", []string{"service", "worship", "sermon"}},
	{"facility_feedback", []string{"facility", "building", "room"}},
	{"staff_feedback", []string{"staff", "pastor", "leader"}},
	{"program_feedback", []string{"program", "event", "activity"}},
}

var firstTimerWeights = []struct {
	keyword string
	weight  float64
}{
	{"first time", 1.0},
	{"first visit", 1.0},
	{"new visitor", 0.9},
	{"welcome", 0.7},
	{"first-timer", 1.0},
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func countAny(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func classify(text string, groups []keywordGroup, def string) string {
	text = strings.ToLower(text)
	for _, g := range groups {
		if containsAny(text, g.keywords) {
			return g.label
		}
	}
	return def
}

func prayerUrgency(body string) string {
	body = strings.ToLower(body)
	switch {
	case containsAny(body, []string{"urgent", "emergency", "critical", "immediate"}):
		return "urgent"
	case containsAny(body, []string{"serious", "important", "significant"}):
		return "high"
	}
	return "normal"
}

func prayerCategory(body string) string { return classify(body, prayerCategories, "general") }

func feedbackType(body string) string { return classify(body, feedbackTypes, "general_feedback") }

func feedbackSentiment(body string) string {
	body = strings.ToLower(body)
	pos := countAny(body, []string{"great", "excellent", "wonderful", "amazing", "love", "blessed"})
	neg := countAny(body, []string{"poor", "bad", "terrible", "disappointed", "frustrated"})
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	}
	return "neutral"
}

// firstTimerRelevance sums keyword weights, capped at 1.0.
func firstTimerRelevance(body string) float64 {
	body = strings.ToLower(body)
	score := 0.0
	for _, kw := range firstTimerWeights {
		if strings.Contains(body, kw.keyword) {
			score += kw.weight
		}
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
