package domain

import "time"

const (
	ConfidenceFloor    = 0.3
	ConfidenceCeiling  = 0.95
	MaxRecommendations = 2
)

const (
	AnalysisProfile         = "profile"
	AnalysisFamily          = "family"
	AnalysisSentiment       = "sentiment"
	AnalysisRecommendations = "recommendations"
)

type ProfileAnalysis struct {
	Interests           []string `json:"interests"`
	MinistryAreas       []string `json:"ministry_areas"`
	LifeStage           string   `json:"life_stage"`
	SpiritualBackground string   `json:"spiritual_background"`
	SpecificNeeds       []string `json:"specific_needs"`
}

type FamilyAnalysis struct {
	Context       string `json:"family_context"`
	IsFamily      bool   `json:"is_family"`
	MemberCount   int    `json:"family_member_count"`
	HasChildren   bool   `json:"has_children"`
	ChildrenCount int    `json:"children_count"`
	IsExisting    bool   `json:"is_existing_family"`
}

type SentimentAnalysis struct {
	Overall            string   `json:"overall_sentiment"`
	Confidence         float64  `json:"confidence"`
	KeyEmotions        []string `json:"key_emotions"`
	Concerns           []string `json:"concerns"`
	PositiveIndicators []string `json:"positive_indicators"`
}

// Recommendation is one suggested next step. Details carries any extra keys a
// structured recommendation arrived with.
type Recommendation struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Details     map[string]any `json:"details,omitempty"`
}

type PersonalNeedsResponse struct {
	Type               string `json:"type"`
	Summary            string `json:"summary"`
	ActionRequired     bool   `json:"action_required"`
	EscalationRequired bool   `json:"escalation_required"`
}

type FeedbackInsight struct {
	Type       string `json:"type"`
	Tone       string `json:"tone"`
	Category   string `json:"category"`
	ActionStep string `json:"action_step"`
}

type ContactStrategy struct {
	BestTime     string   `json:"best_time"`
	Method       string   `json:"method"`
	Alternatives []string `json:"alternative_methods"`
}

// GeneratedNote is the pipeline output. Confidence is always within
// [ConfidenceFloor, ConfidenceCeiling] and each recommendation list holds at
// most MaxRecommendations entries.
type GeneratedNote struct {
	VisitorFullName string `json:"visitor_full_name"`
	VisitorPhone    string `json:"visitor_phone"`
	VisitorEmail    string `json:"visitor_email"`

	BestContactTime string          `json:"best_contact_time"`
	Contact         ContactStrategy `json:"contact_strategy"`

	KeyInterestsSummary string            `json:"key_interests_summary"`
	FamilyContextInfo   string            `json:"family_context_info"`
	Profile             ProfileAnalysis   `json:"profile_analysis"`
	Family              FamilyAnalysis    `json:"family_analysis"`
	SentimentAnalysis   SentimentAnalysis `json:"sentiment_analysis"`

	ChurchIntegrationRecommendations []Recommendation      `json:"church_integration_recommendations"`
	EventEngagementRecommendations   []Recommendation      `json:"event_engagement_recommendations"`
	PersonalNeedsResponse            *PersonalNeedsResponse `json:"personal_needs_response"`
	FeedbackInsight                  *FeedbackInsight       `json:"feedback_insight"`
	RecommendedNextSteps             map[string][]string    `json:"recommended_next_steps"`

	ConfidenceScore     float64   `json:"confidence_score"`
	AIGeneratedLabel    bool      `json:"ai_generated_label"`
	GenerationTimestamp time.Time `json:"generation_timestamp"`
	DataSourcesUsed     []string  `json:"data_sources_used"`
	FailedAnalyses      []string  `json:"failed_analyses"`

	PersonID     string       `json:"person_id"`
	FamID        string       `json:"fam_id"`
	TaskID       string       `json:"task_id"`
	Tenant       string       `json:"tenant"`
	ScenarioType ScenarioType `json:"scenario_type"`

	RawContent string `json:"raw_content"`
}
