package domain

import "github.com/google/uuid"

type ScenarioType string

const (
	ScenarioIndividualNew      ScenarioType = "individual_new"
	ScenarioIndividualExisting ScenarioType = "individual_existing"
	ScenarioFamilyNew          ScenarioType = "family_new"
	ScenarioFamilyExisting     ScenarioType = "family_existing"
)

func (s ScenarioType) IsFamily() bool {
	return s == ScenarioFamilyNew || s == ScenarioFamilyExisting
}

func (s ScenarioType) IsExisting() bool {
	return s == ScenarioIndividualExisting || s == ScenarioFamilyExisting
}

type ContextStrategy string

const (
	StrategyIndividualNewMember  ContextStrategy = "focus_on_individual_new_member"
	StrategyIndividualWithFamily ContextStrategy = "focus_on_individual_with_family_context"
	StrategyNewFamilyUnit        ContextStrategy = "focus_on_new_family_unit"
	StrategyFamilyAddition       ContextStrategy = "focus_on_family_addition"
)

const DefaultEventsTimeframeDays = 14

type DataRequirements struct {
	EventsTimeframeDays int `json:"events_timeframe_days"`
}

// Scenario is derived per event and never stored.
type Scenario struct {
	Type             ScenarioType     `json:"scenario_type"`
	PrimaryPersonID  uuid.UUID        `json:"primary_person_id"`
	RelatedIDs       []string         `json:"family_members_to_query"`
	FamID            uuid.UUID        `json:"fam_id"`
	FamHeadID        uuid.UUID        `json:"family_head_id"`
	Strategy         ContextStrategy  `json:"context_strategy"`
	DataRequirements DataRequirements `json:"data_requirements"`
}

func (s Scenario) EventsTimeframeDays() int {
	if s.DataRequirements.EventsTimeframeDays <= 0 {
		return DefaultEventsTimeframeDays
	}
	return s.DataRequirements.EventsTimeframeDays
}
