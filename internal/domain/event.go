package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FamilyContext string

const (
	FamilyContextIndividual FamilyContext = "individual"
	FamilyContextFamily     FamilyContext = "family"
)

type FamilyHistory string

const (
	FamilyHistoryNew      FamilyHistory = "new"
	FamilyHistoryExisting FamilyHistory = "existing"
)

// InboundEvent is one visitor message, from the API or the intake stream.
type InboundEvent struct {
	Tenant             string        `json:"tenant"`
	PersonID           uuid.UUID     `json:"person_id"`
	FamID              uuid.UUID     `json:"fam_id"`
	FamHeadID          uuid.UUID     `json:"fam_head_id"`
	FamilyContext      FamilyContext `json:"family_context"`
	FamilyHistory      FamilyHistory `json:"family_history"`
	NewFamilyMemberIDs []string      `json:"new_family_members_id,omitempty"`
	EventType          string        `json:"event_type,omitempty"`
	Timestamp          *time.Time    `json:"timestamp,omitempty"`
}

// Validate rejects events the resolver cannot map to exactly one scenario.
func (e InboundEvent) Validate() error {
	if strings.TrimSpace(e.Tenant) == "" {
		return NewValidationError("tenant", "tenant is required")
	}
	if e.PersonID == uuid.Nil {
		return NewValidationError("person_id", "person_id is required")
	}
	if e.FamID == uuid.Nil {
		return NewValidationError("fam_id", "fam_id is required")
	}
	switch e.FamilyContext {
	case FamilyContextIndividual, FamilyContextFamily:
	default:
		return NewValidationError("family_context", fmt.Sprintf("unsupported family_context %q", e.FamilyContext))
	}
	switch e.FamilyHistory {
	case FamilyHistoryNew, FamilyHistoryExisting:
	default:
		return NewValidationError("family_history", fmt.Sprintf("unsupported family_history %q", e.FamilyHistory))
	}
	for _, id := range e.NewFamilyMemberIDs {
		if strings.TrimSpace(id) == "" {
			return NewValidationError("new_family_members_id", "member ids must be non-empty")
		}
	}
	return nil
}

// Normalize lower-cases the flags and fills a missing family head with the person.
func (e InboundEvent) Normalize() InboundEvent {
	e.Tenant = strings.TrimSpace(e.Tenant)
	e.FamilyContext = FamilyContext(strings.ToLower(strings.TrimSpace(string(e.FamilyContext))))
	e.FamilyHistory = FamilyHistory(strings.ToLower(strings.TrimSpace(string(e.FamilyHistory))))
	if e.FamHeadID == uuid.Nil {
		e.FamHeadID = e.PersonID
	}
	if len(e.NewFamilyMemberIDs) > 0 {
		ids := make([]string, 0, len(e.NewFamilyMemberIDs))
		for _, id := range e.NewFamilyMemberIDs {
			ids = append(ids, strings.TrimSpace(id))
		}
		e.NewFamilyMemberIDs = ids
	}
	return e
}
