package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys
const (
	EventPatientRegistered    = "patient.registered"
	EventPatientStatusChanged = "patient.status_changed"
	EventEncounterCompleted   = "encounter.completed"
)

const ServiceName = "frontdesk-service"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// PatientRegisteredEvent is emitted when reception adds a patient to the queue
type PatientRegisteredEvent struct {
	BaseEvent
	Data PatientRegisteredData `json:"data"`
}

type PatientRegisteredData struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Position  int    `json:"position"` // 0-based queue index
}

// PatientStatusChangedEvent is emitted for every status transition,
// including the one to Complete at the end of an encounter.
type PatientStatusChangedEvent struct {
	BaseEvent
	Data PatientStatusChangedData `json:"data"`
}

type PatientStatusChangedData struct {
	PatientID string    `json:"patient_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

// EncounterCompletedEvent carries the finalized diagnosis counts, not its text.
type EncounterCompletedEvent struct {
	BaseEvent
	Data EncounterCompletedData `json:"data"`
}

type EncounterCompletedData struct {
	PatientID        string    `json:"patient_id"`
	MedicationCount  int       `json:"medication_count"`
	RecommendedCount int       `json:"recommended_count"`
	AvoidCount       int       `json:"avoid_count"`
	NextPatientID    string    `json:"next_patient_id"`
	CompletedAt      time.Time `json:"completed_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
	}
}
