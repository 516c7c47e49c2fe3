package followup

import (
	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

// Resolve maps a validated event to its scenario. It does no I/O and is total
// over the two flag enumerations.
func Resolve(ev domain.InboundEvent) domain.Scenario {
	person := ev.PersonID.String()
	sc := domain.Scenario{
		PrimaryPersonID:  ev.PersonID,
		FamID:            ev.FamID,
		FamHeadID:        ev.FamHeadID,
		DataRequirements: domain.DataRequirements{EventsTimeframeDays: domain.DefaultEventsTimeframeDays},
	}

	switch {
	case ev.FamilyContext == domain.FamilyContextIndividual && ev.FamilyHistory == domain.FamilyHistoryExisting:
		sc.Type = domain.ScenarioIndividualExisting
		sc.Strategy = domain.StrategyIndividualWithFamily
		related := []string{person}
		if ev.FamHeadID != uuid.Nil && ev.FamHeadID != ev.PersonID {
			related = append(related, ev.FamHeadID.String())
		}
		sc.RelatedIDs = dedupe(related)
	case ev.FamilyContext == domain.FamilyContextFamily && ev.FamilyHistory == domain.FamilyHistoryNew:
		sc.Type = domain.ScenarioFamilyNew
		sc.Strategy = domain.StrategyNewFamilyUnit
		sc.RelatedIDs = dedupe(append([]string{person}, ev.NewFamilyMemberIDs...))
	case ev.FamilyContext == domain.FamilyContextFamily && ev.FamilyHistory == domain.FamilyHistoryExisting:
		sc.Type = domain.ScenarioFamilyExisting
		sc.Strategy = domain.StrategyFamilyAddition
		sc.RelatedIDs = []string{person}
	default:
		sc.Type = domain.ScenarioIndividualNew
		sc.Strategy = domain.StrategyIndividualNewMember
		sc.RelatedIDs = []string{person}
	}
	return sc
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
