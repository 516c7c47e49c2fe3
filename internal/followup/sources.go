package followup

import (
	"context"

	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

// MemberSource reads the tenant's person, family and notes tables. A nil
// profile or form means "not found"; slices may be empty but callers treat
// nil the same way.
type MemberSource interface {
	GetProfile(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) (*domain.Person, error)
	GetWelcomeForm(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) (*domain.WelcomeForm, error)
	GetFamilyMembers(ctx context.Context, tenant domain.TenantRef, famID uuid.UUID) ([]domain.Person, error)
	GetFamilyMemberProfiles(ctx context.Context, tenant domain.TenantRef, personIDs []string) ([]domain.Person, error)
	GetFirstTimerNotes(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.FirstTimerNote, error)
	GetPrayerRequests(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.PrayerRequest, error)
	GetFeedbackFields(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.FeedbackField, error)
	GetExistingFollowupNotes(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.FollowupNote, error)
}

type CalendarSource interface {
	GetUpcomingEvents(ctx context.Context, tenant domain.TenantRef, daysAhead int) ([]domain.Event, error)
}

type ConnectSource interface {
	GetPublicTeams(ctx context.Context, tenant domain.TenantRef) ([]domain.Team, error)
	GetPublicGroups(ctx context.Context, tenant domain.TenantRef) ([]domain.Group, error)
}

// LLM is the text completion endpoint used by the analysis branches.
type LLM interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// emptyCalendar and emptyConnect stand in for sources a deployment does not
// configure; their tasks still run and yield empty lists.
type emptyCalendar struct{}

func (emptyCalendar) GetUpcomingEvents(context.Context, domain.TenantRef, int) ([]domain.Event, error) {
	return []domain.Event{}, nil
}

type emptyConnect struct{}

func (emptyConnect) GetPublicTeams(context.Context, domain.TenantRef) ([]domain.Team, error) {
	return []domain.Team{}, nil
}

func (emptyConnect) GetPublicGroups(context.Context, domain.TenantRef) ([]domain.Group, error) {
	return []domain.Group{}, nil
}
