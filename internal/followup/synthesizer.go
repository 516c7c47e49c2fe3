package followup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

type Synthesizer struct {
	llm     LLM
	prompts *Prompts
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

type SynthesizerOption func(*Synthesizer)

func WithSynthesizerClock(now func() time.Time) SynthesizerOption {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

func WithSynthesizerMetrics(m *observability.Metrics) SynthesizerOption {
	return func(s *Synthesizer) { s.metrics = m }
}

// NewSynthesizer falls back to the embedded prompt catalog when prompts is nil.
func NewSynthesizer(llm LLM, prompts *Prompts, baseLog *logger.Logger, opts ...SynthesizerOption) *Synthesizer {
	if prompts == nil {
		prompts = MustLoadPrompts()
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	s := &Synthesizer{
		llm:     llm,
		prompts: prompts,
		log:     baseLog.With("service", "NoteSynthesizer"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize never fails. Each analysis branch that errors is replaced by its
// fallback and lowers the confidence score.
func (s *Synthesizer) Synthesize(ctx context.Context, vc domain.VisitorContext) domain.GeneratedNote {
	var (
		profile   domain.ProfileAnalysis
		family    domain.FamilyAnalysis
		sentiment domain.SentimentAnalysis
		recs      rawRecommendations
		errs      [4]error
	)

	var g errgroup.Group
	g.Go(func() error {
		profile, errs[0] = runBranch(s, domain.AnalysisProfile, profileFallback(), func() (domain.ProfileAnalysis, error) {
			return s.analyzeProfile(ctx, vc)
		})
		return nil
	})
	g.Go(func() error {
		family, errs[1] = runBranch(s, domain.AnalysisFamily, familyFacts(vc, s.now()), func() (domain.FamilyAnalysis, error) {
			return s.analyzeFamily(ctx, vc)
		})
		return nil
	})
	g.Go(func() error {
		sentiment, errs[2] = runBranch(s, domain.AnalysisSentiment, neutralSentiment(), func() (domain.SentimentAnalysis, error) {
			return s.analyzeSentiment(ctx, vc)
		})
		return nil
	})
	g.Go(func() error {
		recs, errs[3] = runBranch(s, domain.AnalysisRecommendations, rawRecommendations{}, func() (rawRecommendations, error) {
			return s.generateRecommendations(ctx, vc)
		})
		return nil
	})
	_ = g.Wait()

	failed := make([]string, 0, len(errs))
	for i, name := range []string{domain.AnalysisProfile, domain.AnalysisFamily, domain.AnalysisSentiment, domain.AnalysisRecommendations} {
		if errs[i] != nil {
			failed = append(failed, name)
		}
	}

	contact := contactStrategy(vc.WelcomeForm, profile)
	community := toRecommendations(recTypeCommunity, recs.CommunityIntegration)
	events := toRecommendations(recTypeEvent, recs.EventEngagement)
	personal := firstPersonalNeeds(recs.PersonalNeeds)
	insight := firstFeedbackInsight(recs.FeedbackInsights)

	interests := profile.Interests
	if len(interests) == 0 {
		interests = profileFallback().Interests
	}

	sc := vc.ScenarioInfo
	person := vc.VisitorProfile
	note := domain.GeneratedNote{
		VisitorFullName:                  person.FullName(),
		VisitorPhone:                     person.Phone,
		VisitorEmail:                     person.Email,
		BestContactTime:                  contact.BestTime,
		Contact:                          contact,
		KeyInterestsSummary:              strings.Join(interests, ", "),
		FamilyContextInfo:                family.Context,
		Profile:                          profile,
		Family:                           family,
		SentimentAnalysis:                sentiment,
		ChurchIntegrationRecommendations: community,
		EventEngagementRecommendations:   events,
		PersonalNeedsResponse:            personal,
		FeedbackInsight:                  insight,
		RecommendedNextSteps:             nextSteps(community, events, personal, insight),
		ConfidenceScore:                  confidenceScore(vc, len(failed)),
		AIGeneratedLabel:                 true,
		GenerationTimestamp:              s.now().UTC(),
		DataSourcesUsed:                  dataSourcesUsed(vc),
		FailedAnalyses:                   failed,
		PersonID:                         sc.PrimaryPersonID.String(),
		FamID:                            sc.FamID.String(),
		TaskID:                           sc.FamID.String(),
		Tenant:                           vc.Tenant.Identifier,
		ScenarioType:                     sc.Type,
	}
	note.RawContent = renderNote(note)
	return note
}

// runBranch times one analysis, converts a panic into the given fallback and
// logs failures with the branch name.
func runBranch[T any](s *Synthesizer, name string, fallback T, fn func() (T, error)) (out T, err error) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			out, err = fallback, fmt.Errorf("%s analysis panic: %v", name, rec)
		}
		status := "ok"
		if err != nil {
			status = "failed"
			s.log.Warn("Analysis branch failed, using fallback", "branch", name, "error", err)
		}
		s.metrics.ObserveAnalysis(name, status, time.Since(start))
	}()
	return fn()
}
