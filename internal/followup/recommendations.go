package followup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

const (
	recTypeCommunity = "community_integration"
	recTypeEvent     = "event_engagement"
	recTypePersonal  = "personal_needs"
	recTypeFeedback  = "feedback_insight"
	defaultPriority  = "medium"
)

// flexItem is one recommendation as the endpoint returned it: plain text or
// an object.
type flexItem struct {
	Text   string
	Object map[string]any
}

func (it flexItem) empty() bool {
	return strings.TrimSpace(it.Text) == "" && len(it.Object) == 0
}

// flexList decodes a JSON array, a single string, a single object or null.
type flexList []flexItem

func (l *flexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] != '[' {
		it, err := decodeFlexItem(b)
		if err != nil {
			return err
		}
		*l = flexList{it}
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	out := make(flexList, 0, len(raws))
	for _, r := range raws {
		it, err := decodeFlexItem(r)
		if err != nil {
			return err
		}
		out = append(out, it)
	}
	*l = out
	return nil
}

func decodeFlexItem(b []byte) (flexItem, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return flexItem{}, err
	}
	switch t := v.(type) {
	case nil:
		return flexItem{}, nil
	case string:
		return flexItem{Text: t}, nil
	case map[string]any:
		return flexItem{Object: t}, nil
	case []any:
		return flexItem{}, fmt.Errorf("nested list in recommendation")
	default:
		return flexItem{Text: fmt.Sprint(t)}, nil
	}
}

// texts returns the non-empty entries as strings. Objects contribute their
// name or title.
func (l flexList) texts() []string {
	out := make([]string, 0, len(l))
	for _, it := range l {
		var t string
		if it.Object != nil {
			t = firstNonEmpty(stringField(it.Object, "name"), stringField(it.Object, "title"))
		} else {
			t = strings.TrimSpace(it.Text)
		}
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func textItems(texts ...string) flexList {
	out := make(flexList, 0, len(texts))
	for _, t := range texts {
		out = append(out, flexItem{Text: t})
	}
	return out
}

type rawRecommendations struct {
	CommunityIntegration flexList `json:"community_integration"`
	EventEngagement      flexList `json:"event_engagement"`
	PersonalNeeds        flexList `json:"personal_needs"`
	FeedbackInsights     flexList `json:"feedback_insights"`
}

// toRecommendations keeps at most domain.MaxRecommendations non-empty items.
func toRecommendations(kind string, items flexList) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, domain.MaxRecommendations)
	for _, it := range items {
		if len(out) == domain.MaxRecommendations {
			break
		}
		if it.empty() {
			continue
		}
		if it.Object == nil {
			text := strings.TrimSpace(it.Text)
			out = append(out, domain.Recommendation{
				Type:        kind,
				Title:       text,
				Description: text,
				Priority:    defaultPriority,
			})
			continue
		}
		out = append(out, structuredRecommendation(kind, it.Object))
	}
	return out
}

// structuredRecommendation passes an object through, moving unknown keys
// into Details.
func structuredRecommendation(kind string, obj map[string]any) domain.Recommendation {
	rec := domain.Recommendation{
		Type:        stringField(obj, "type"),
		Title:       stringField(obj, "title"),
		Description: stringField(obj, "description"),
		Priority:    stringField(obj, "priority"),
	}
	if rec.Type == "" {
		rec.Type = kind
	}
	for k, v := range obj {
		switch k {
		case "type", "title", "description", "priority":
			continue
		}
		if rec.Details == nil {
			rec.Details = map[string]any{}
		}
		rec.Details[k] = v
	}
	return rec
}

// firstPersonalNeeds returns the first candidate with a summary, or nil.
func firstPersonalNeeds(items flexList) *domain.PersonalNeedsResponse {
	for _, it := range items {
		if it.empty() {
			continue
		}
		if it.Object == nil {
			return &domain.PersonalNeedsResponse{
				Type:               recTypePersonal,
				Summary:            strings.TrimSpace(it.Text),
				ActionRequired:     true,
				EscalationRequired: false,
			}
		}
		summary := stringField(it.Object, "summary")
		if summary == "" {
			continue
		}
		resp := &domain.PersonalNeedsResponse{
			Type:               stringField(it.Object, "type"),
			Summary:            summary,
			ActionRequired:     boolField(it.Object, "action_required", true),
			EscalationRequired: boolField(it.Object, "escalation_required", false),
		}
		if resp.Type == "" {
			resp.Type = recTypePersonal
		}
		return resp
	}
	return nil
}

// firstFeedbackInsight returns the first candidate with an action step, or nil.
func firstFeedbackInsight(items flexList) *domain.FeedbackInsight {
	for _, it := range items {
		if it.empty() {
			continue
		}
		if it.Object == nil {
			return &domain.FeedbackInsight{
				Type:       recTypeFeedback,
				Tone:       "positive",
				Category:   "general",
				ActionStep: strings.TrimSpace(it.Text),
			}
		}
		step := stringField(it.Object, "action_step")
		if step == "" {
			continue
		}
		fi := &domain.FeedbackInsight{
			Type:       stringField(it.Object, "type"),
			Tone:       stringField(it.Object, "tone"),
			Category:   stringField(it.Object, "category"),
			ActionStep: step,
		}
		if fi.Type == "" {
			fi.Type = recTypeFeedback
		}
		return fi
	}
	return nil
}

func nextSteps(community, events []domain.Recommendation, pn *domain.PersonalNeedsResponse, fi *domain.FeedbackInsight) map[string][]string {
	titles := func(recs []domain.Recommendation) []string {
		out := make([]string, 0, len(recs))
		for _, r := range recs {
			out = append(out, firstNonEmpty(r.Title, r.Description))
		}
		return out
	}
	steps := map[string][]string{
		"church_integration": titles(community),
		"event_engagement":   titles(events),
		"personal_needs":     {},
		"feedback":           {},
	}
	if pn != nil && pn.Summary != "" {
		steps["personal_needs"] = []string{pn.Summary}
	}
	if fi != nil && fi.ActionStep != "" {
		steps["feedback"] = []string{fi.ActionStep}
	}
	return steps
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

func boolField(obj map[string]any, key string, def bool) bool {
	if b, ok := obj[key].(bool); ok {
		return b
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
