package reports

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

const topRecommendationLimit = 5

type VisitorSummary struct {
	TotalVisitors         int     `json:"total_visitors"`
	IndividualEngagements int     `json:"individual_engagements"`
	FamilyEngagements     int     `json:"family_engagements"`
	FamilyMembers         int     `json:"family_members"`
	AverageConfidence     float64 `json:"average_confidence"`
}

type RecommendationCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type IndividualSummary struct {
	PersonID       string              `json:"person_id"`
	Name           string              `json:"name"`
	ScenarioType   domain.ScenarioType `json:"scenario_type"`
	Sentiment      string              `json:"sentiment"`
	Confidence     float64             `json:"confidence_score"`
	Interests      []string            `json:"interests"`
	NextStep       string              `json:"next_step,omitempty"`
	LastNoteAt     time.Time           `json:"last_note_at"`
	FailedAnalyses []string            `json:"failed_analyses,omitempty"`
}

// Summary is the report body. Percentages are of TotalVisitors, one decimal.
type Summary struct {
	PeriodStart        time.Time             `json:"period_start"`
	PeriodEnd          time.Time             `json:"period_end"`
	Visitors           VisitorSummary        `json:"visitor_summary"`
	InterestBreakdown  map[string]float64    `json:"interest_breakdown"`
	SentimentBreakdown map[string]int        `json:"sentiment_breakdown"`
	TopRecommendations []RecommendationCount `json:"top_recommendations"`
	Individuals        []IndividualSummary   `json:"individual_summaries"`
	SkippedNotes       int                   `json:"skipped_notes,omitempty"`
}

type visitorState struct {
	note      domain.GeneratedNote
	createdAt time.Time
}

// Summarize folds stored notes into a Summary. A visitor with several notes in
// the period is represented by the newest one; notes whose meta cannot be
// decoded are counted in SkippedNotes.
func Summarize(rows []*domain.AINote, from, to time.Time) Summary {
	out := Summary{
		PeriodStart:        from.UTC(),
		PeriodEnd:          to.UTC(),
		InterestBreakdown:  map[string]float64{},
		SentimentBreakdown: map[string]int{},
		TopRecommendations: []RecommendationCount{},
		Individuals:        []IndividualSummary{},
	}

	latest := map[string]visitorState{}
	order := []string{}
	for _, row := range rows {
		if row == nil {
			continue
		}
		var note domain.GeneratedNote
		if len(row.Meta) == 0 || json.Unmarshal(row.Meta, &note) != nil {
			out.SkippedNotes++
			continue
		}
		key := row.RecipientID.String()
		if note.PersonID == "" {
			note.PersonID = key
		}
		if note.ScenarioType == "" {
			note.ScenarioType = domain.ScenarioType(row.ScenarioType)
		}
		prev, seen := latest[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || !row.CreatedAt.Before(prev.createdAt) {
			latest[key] = visitorState{note: note, createdAt: row.CreatedAt.UTC()}
		}
	}

	interests := map[string]int{}
	recs := map[string]int{}
	confSum := 0.0
	for _, key := range order {
		st := latest[key]
		n := st.note
		out.Visitors.TotalVisitors++
		confSum += n.ConfidenceScore
		if n.ScenarioType.IsFamily() {
			out.Visitors.FamilyEngagements++
			out.Visitors.FamilyMembers += n.Family.MemberCount
		} else {
			out.Visitors.IndividualEngagements++
		}

		seenInterest := map[string]bool{}
		for _, in := range n.Profile.Interests {
			in = strings.ToLower(strings.TrimSpace(in))
			if in == "" || seenInterest[in] {
				continue
			}
			seenInterest[in] = true
			interests[in]++
		}

		sentiment := strings.ToLower(strings.TrimSpace(n.SentimentAnalysis.Overall))
		if sentiment == "" {
			sentiment = "unknown"
		}
		out.SentimentBreakdown[sentiment]++

		var nextStep string
		for _, list := range [][]domain.Recommendation{n.ChurchIntegrationRecommendations, n.EventEngagementRecommendations} {
			for _, r := range list {
				title := strings.TrimSpace(r.Title)
				if title == "" {
					continue
				}
				recs[title]++
				if nextStep == "" {
					nextStep = title
				}
			}
		}

		out.Individuals = append(out.Individuals, IndividualSummary{
			PersonID:       n.PersonID,
			Name:           n.VisitorFullName,
			ScenarioType:   n.ScenarioType,
			Sentiment:      sentiment,
			Confidence:     n.ConfidenceScore,
			Interests:      nonNil(n.Profile.Interests),
			NextStep:       nextStep,
			LastNoteAt:     st.createdAt,
			FailedAnalyses: n.FailedAnalyses,
		})
	}

	if total := out.Visitors.TotalVisitors; total > 0 {
		out.Visitors.AverageConfidence = round(confSum/float64(total), 100)
		for k, c := range interests {
			out.InterestBreakdown[k] = round(float64(c)*100/float64(total), 10)
		}
	}

	for title, c := range recs {
		out.TopRecommendations = append(out.TopRecommendations, RecommendationCount{Title: title, Count: c})
	}
	sort.Slice(out.TopRecommendations, func(i, j int) bool {
		a, b := out.TopRecommendations[i], out.TopRecommendations[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Title < b.Title
	})
	if len(out.TopRecommendations) > topRecommendationLimit {
		out.TopRecommendations = out.TopRecommendations[:topRecommendationLimit]
	}

	sort.SliceStable(out.Individuals, func(i, j int) bool {
		return out.Individuals[i].LastNoteAt.After(out.Individuals[j].LastNoteAt)
	})
	return out
}

func round(v float64, scale float64) float64 {
	return math.Round(v*scale) / scale
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
