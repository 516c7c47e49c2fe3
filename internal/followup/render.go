package followup

import (
	"fmt"
	"strings"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

const notProvided = "Not provided"

// renderNote builds raw_content from the finished note. No endpoint call.
func renderNote(n domain.GeneratedNote) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("# Visitor Follow-up Note")
	line("")
	line("## Visitor Information")
	line("**Name:** %s", orDefault(n.VisitorFullName, notProvided))
	line("**Email:** %s", orDefault(n.VisitorEmail, notProvided))
	line("**Phone:** %s", orDefault(n.VisitorPhone, notProvided))
	line("**Best Contact Time:** %s", orDefault(n.BestContactTime, "Not specified"))
	line("**Preferred Contact Method:** %s", orDefault(n.Contact.Method, defaultContactMethod))
	line("")
	line("## Key Interests")
	line("%s", orDefault(n.KeyInterestsSummary, "General Fellowship"))
	line("")
	line("## Family Context")
	line("%s", orDefault(n.FamilyContextInfo, "Individual visitor"))
	line("")
	line("## Sentiment Analysis")
	line("**Overall Sentiment:** %s", orDefault(n.SentimentAnalysis.Overall, "Neutral"))
	line("**Confidence:** %.0f%%", n.SentimentAnalysis.Confidence*100)
	emotions := strings.Join(n.SentimentAnalysis.KeyEmotions, ", ")
	line("**Key Emotions:** %s", orDefault(emotions, "Curious"))
	line("")
	line("## Recommended Next Steps")
	line("")
	line("### Church Community Integration")
	for _, r := range n.ChurchIntegrationRecommendations {
		line("- %s", firstNonEmpty(r.Title, r.Description))
	}
	line("")
	line("### Event Engagement")
	for _, r := range n.EventEngagementRecommendations {
		line("- %s", firstNonEmpty(r.Title, r.Description))
	}
	line("")
	line("### Personal Needs Response")
	if n.PersonalNeedsResponse != nil && n.PersonalNeedsResponse.Summary != "" {
		line("- %s", n.PersonalNeedsResponse.Summary)
	}
	line("")
	line("### Feedback Insights")
	if n.FeedbackInsight != nil && n.FeedbackInsight.ActionStep != "" {
		line("- %s", n.FeedbackInsight.ActionStep)
	}
	line("")
	line("---")
	b.WriteString("*This note was generated by AI on " + n.GenerationTimestamp.Format("2006-01-02 at 15:04") + "*")
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
