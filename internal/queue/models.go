package queue

import (
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/pagination"
)

// RegisterPatientRequest is the reception intake form
type RegisterPatientRequest struct {
	Name   string  `json:"name"`
	Age    *int    `json:"age,omitempty"`
	Gender *string `json:"gender,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SummaryRequest struct {
	Summary string `json:"summary"`
}

type DietItemRequest struct {
	Text string `json:"text"`
}

// QueueEntry is one reception queue card.
type QueueEntry struct {
	clinic.Patient
	Position    int  `json:"position"`
	Current     bool `json:"current"`
	Advanceable bool `json:"advanceable"` // false once Complete
}

type QueueListResponse struct {
	Success    bool            `json:"success"`
	Patients   []QueueEntry    `json:"patients"`
	Cursor     int             `json:"cursor"`
	Total      int             `json:"total"`
	Pagination pagination.Meta `json:"pagination"`
}

// CurrentView is what the doctor workspace renders. Patient and Draft are
// nil when the queue is empty.
type CurrentView struct {
	Patient  *clinic.Patient             `json:"patient"`
	Draft    *clinic.StructuredDiagnosis `json:"draft"`
	Position int                         `json:"position"` // 1-based
	Total    int                         `json:"total"`
}

// AdvanceResult reports a finalized encounter. The queue is already
// consistent; DisplayAfterMs only paces when a UI shows Next.
type AdvanceResult struct {
	Completed      clinic.Patient             `json:"completed"`
	Next           clinic.Patient             `json:"next"`
	Draft          clinic.StructuredDiagnosis `json:"draft"`
	Position       int                        `json:"position"`
	Total          int                        `json:"total"`
	DisplayAfterMs int64                      `json:"display_after_ms"`
}
