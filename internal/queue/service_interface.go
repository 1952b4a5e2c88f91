package queue

import (
	"context"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/diagnosis"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/pagination"
)

// ServiceInterface defines the queue and draft operations behind both workspaces
type ServiceInterface interface {
	ListQueue(ctx context.Context, params pagination.Params) QueueListResponse
	Register(ctx context.Context, in Intake) (*clinic.Patient, bool)
	SetStatus(ctx context.Context, patientID string, status clinic.PatientStatus) bool

	Current(ctx context.Context) CurrentView
	SetSummary(ctx context.Context, text string) (clinic.StructuredDiagnosis, error)
	AddDietItem(ctx context.Context, kind diagnosis.DietKind) (clinic.StructuredDiagnosis, error)
	UpdateDietItem(ctx context.Context, kind diagnosis.DietKind, index int, text string) (clinic.StructuredDiagnosis, error)
	AddMedication(ctx context.Context) (clinic.Medication, clinic.StructuredDiagnosis, error)
	UpdateMedication(ctx context.Context, id string, patch diagnosis.MedicationPatch) (bool, clinic.StructuredDiagnosis, error)
	RemoveMedication(ctx context.Context, id string) (bool, clinic.StructuredDiagnosis, error)
	Advance(ctx context.Context) (*AdvanceResult, error)
}

// MetricsRecorder receives queue business metrics. Nil is allowed.
type MetricsRecorder interface {
	RecordPatientOperation(ctx context.Context, operation string)
	RecordEncounterCompleted(ctx context.Context, medications int)
	RecordDraftEdit(ctx context.Context, operation string)
}

var _ ServiceInterface = (*Service)(nil)
