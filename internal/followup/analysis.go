package followup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

var errNoLLM = errors.New("llm endpoint not configured")

// ParseError marks endpoint output that could not be decoded. The branch
// still counts as failed but uses its parse fallback.
type ParseError struct {
	Branch string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s analysis returned unparseable output: %v", e.Branch, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func profileFallback() domain.ProfileAnalysis {
	return domain.ProfileAnalysis{
		Interests:           []string{"General Fellowship"},
		MinistryAreas:       []string{"Sunday Service"},
		LifeStage:           "Unknown",
		SpiritualBackground: "Unknown",
		SpecificNeeds:       []string{},
	}
}

func neutralSentiment() domain.SentimentAnalysis {
	return domain.SentimentAnalysis{
		Overall:            "Neutral",
		Confidence:         0.5,
		KeyEmotions:        []string{"Curious"},
		Concerns:           []string{},
		PositiveIndicators: []string{},
	}
}

func unparsedSentiment() domain.SentimentAnalysis {
	return domain.SentimentAnalysis{
		Overall:            "Positive",
		Confidence:         0.7,
		KeyEmotions:        []string{"Interested"},
		Concerns:           []string{},
		PositiveIndicators: []string{"Attended service"},
	}
}

func unparsedRecommendations() rawRecommendations {
	return rawRecommendations{
		CommunityIntegration: textItems("Invite to newcomer lunch", "Connect with greeter team"),
		EventEngagement:      textItems("Invite to next Sunday service", "Share upcoming events calendar"),
		PersonalNeeds:        textItems("Follow up on any prayer requests or personal needs mentioned"),
		FeedbackInsights:     textItems("Address any questions or feedback they provided"),
	}
}

// generate renders a prompt, calls the endpoint and decodes the JSON reply
// into out.
func (s *Synthesizer) generate(ctx context.Context, name string, in any, out any) error {
	if s.llm == nil {
		return errNoLLM
	}
	p, err := s.prompts.get(name)
	if err != nil {
		return err
	}
	text, err := p.Render(in)
	if err != nil {
		return err
	}
	reply, err := s.llm.Generate(ctx, text, p.temperature)
	if err != nil {
		return fmt.Errorf("%s analysis: %w", name, err)
	}
	if err := decodeJSONReply(reply, out); err != nil {
		return &ParseError{Branch: name, Err: err}
	}
	return nil
}

func isParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// profileReply accepts a single string wherever the endpoint should have
// returned a list.
type profileReply struct {
	Interests           flexList `json:"interests"`
	MinistryAreas       flexList `json:"ministry_areas"`
	LifeStage           string   `json:"life_stage"`
	SpiritualBackground string   `json:"spiritual_background"`
	SpecificNeeds       flexList `json:"specific_needs"`
}

func (s *Synthesizer) analyzeProfile(ctx context.Context, vc domain.VisitorContext) (domain.ProfileAnalysis, error) {
	var reply profileReply
	if err := s.generate(ctx, promptProfile, profileInput(vc), &reply); err != nil {
		return profileFallback(), err
	}
	out := domain.ProfileAnalysis{
		Interests:           reply.Interests.texts(),
		MinistryAreas:       reply.MinistryAreas.texts(),
		LifeStage:           reply.LifeStage,
		SpiritualBackground: reply.SpiritualBackground,
		SpecificNeeds:       reply.SpecificNeeds.texts(),
	}
	if strings.TrimSpace(out.LifeStage) == "" {
		out.LifeStage = "Unknown"
	}
	if strings.TrimSpace(out.SpiritualBackground) == "" {
		out.SpiritualBackground = "Unknown"
	}
	return out, nil
}

// analyzeFamily starts from facts derived from the scenario and member
// records. The endpoint only rewrites the narrative; on failure the facts
// stand alone.
func (s *Synthesizer) analyzeFamily(ctx context.Context, vc domain.VisitorContext) (domain.FamilyAnalysis, error) {
	facts := familyFacts(vc, s.now())
	var out struct {
		FamilyContext string `json:"family_context"`
	}
	if err := s.generate(ctx, promptFamily, familyInput(vc, facts), &out); err != nil {
		return facts, err
	}
	if narrative := strings.TrimSpace(out.FamilyContext); narrative != "" {
		facts.Context = narrative
	}
	return facts, nil
}

func (s *Synthesizer) analyzeSentiment(ctx context.Context, vc domain.VisitorContext) (domain.SentimentAnalysis, error) {
	if !vc.HasFeedbackData() {
		return neutralSentiment(), nil
	}
	var out domain.SentimentAnalysis
	if err := s.generate(ctx, promptSentiment, sentimentInput(vc), &out); err != nil {
		if isParseError(err) {
			return unparsedSentiment(), err
		}
		return neutralSentiment(), err
	}
	if strings.TrimSpace(out.Overall) == "" {
		out.Overall = "Neutral"
	}
	out.Confidence = clamp(out.Confidence, 0, 1)
	out.KeyEmotions = nonNil(out.KeyEmotions)
	out.Concerns = nonNil(out.Concerns)
	out.PositiveIndicators = nonNil(out.PositiveIndicators)
	return out, nil
}

func (s *Synthesizer) generateRecommendations(ctx context.Context, vc domain.VisitorContext) (rawRecommendations, error) {
	var out rawRecommendations
	if err := s.generate(ctx, promptRecommendations, recommendationsInput(vc), &out); err != nil {
		if isParseError(err) {
			return unparsedRecommendations(), err
		}
		return rawRecommendations{}, err
	}
	return out, nil
}

// familyFacts is the deterministic part of the family analysis.
func familyFacts(vc domain.VisitorContext, now time.Time) domain.FamilyAnalysis {
	sc := vc.ScenarioInfo
	fa := domain.FamilyAnalysis{
		IsFamily:    sc.Type.IsFamily(),
		IsExisting:  sc.Type.IsExisting(),
		MemberCount: len(sc.RelatedIDs),
	}
	if fa.MemberCount == 0 {
		fa.MemberCount = 1
	}
	for _, m := range vc.FamilyMembers {
		if age, ok := m.Age(now); ok && age < 18 {
			fa.ChildrenCount++
		}
	}
	fa.HasChildren = fa.ChildrenCount > 0

	var b strings.Builder
	if fa.IsFamily {
		fmt.Fprintf(&b, "Family visit with %d members. ", fa.MemberCount)
		if fa.HasChildren {
			fmt.Fprintf(&b, "Family includes %d children. ", fa.ChildrenCount)
		} else {
			b.WriteString("Adult family members. ")
		}
	} else {
		b.WriteString("Individual visit. ")
	}
	if fa.IsExisting {
		b.WriteString("Family has previous church connections.")
	} else {
		b.WriteString("New family to the church.")
	}
	fa.Context = b.String()
	return fa
}

// decodeJSONReply accepts a bare object or one wrapped in a markdown fence
// or surrounding prose.
func decodeJSONReply(reply string, out any) error {
	body := strings.TrimSpace(reply)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return errors.New("no JSON object in reply")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body[start : end+1])))
	return dec.Decode(out)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
