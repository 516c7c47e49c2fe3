package realtime

import (
	"time"
)

type EventType string

const (
	EventNoteGenerated     EventType = "note.generated"
	EventNotePersistFailed EventType = "note.persist_failed"
	EventFeedbackSubmitted EventType = "feedback.submitted"
	EventReportBuilt       EventType = "report.built"
)

// Event is what other services see on the note event channel. Data carries
// ids and small summaries only, never the visitor's contact details.
type Event struct {
	Type   EventType      `json:"type"`
	Tenant string         `json:"tenant"`
	Data   map[string]any `json:"data,omitempty"`
	At     time.Time      `json:"at"`
}

func NewEvent(t EventType, tenant string, data map[string]any) Event {
	return Event{Type: t, Tenant: tenant, Data: data, At: time.Now().UTC()}
}
