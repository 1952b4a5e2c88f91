package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/diagnosis"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/pagination"
)

var tracer = otel.Tracer("github.com/WailSalutem-Health-Care/frontdesk-service/queue")

type ServiceConfig struct {
	Publisher       messaging.PublisherInterface
	Metrics         MetricsRecorder
	Logger          zerolog.Logger
	TransitionDelay time.Duration
}

// Service is the single actor in front of the queue and the draft. Every
// operation runs to completion under mu before the next one starts.
type Service struct {
	mu     sync.Mutex
	queue  *Controller
	editor *diagnosis.Editor

	publisher       messaging.PublisherInterface
	metrics         MetricsRecorder
	logger          zerolog.Logger
	transitionDelay time.Duration
}

func NewService(queue *Controller, editor *diagnosis.Editor, cfg ServiceConfig) *Service {
	s := &Service{
		queue:           queue,
		editor:          editor,
		publisher:       cfg.Publisher,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		transitionDelay: cfg.TransitionDelay,
	}
	if s.publisher == nil {
		s.publisher = messaging.NopPublisher{}
	}
	s.syncEditor()
	return s
}

// syncEditor reseeds the draft when the patient under the cursor is not
// the one the draft belongs to. Callers hold mu.
func (s *Service) syncEditor() {
	cur, ok := s.queue.Current()
	if !ok {
		if s.editor.PatientID() != "" {
			s.editor.Seed(nil)
		}
		return
	}
	if cur.ID != s.editor.PatientID() {
		s.editor.Seed(&cur)
		s.logger.Debug().Str("patient_id", cur.ID).Msg("draft seeded")
	}
}

func (s *Service) ListQueue(ctx context.Context, params pagination.Params) QueueListResponse {
	params.Validate()

	s.mu.Lock()
	patients := s.queue.Patients()
	cursor := s.queue.Cursor()
	s.mu.Unlock()

	start, end := params.Window(len(patients))
	entries := make([]QueueEntry, 0, end-start)
	for i := start; i < end; i++ {
		p := patients[i]
		entries = append(entries, QueueEntry{
			Patient:     p,
			Position:    i,
			Current:     i == cursor,
			Advanceable: p.Status != clinic.StatusComplete,
		})
	}

	return QueueListResponse{
		Success:    true,
		Patients:   entries,
		Cursor:     cursor,
		Total:      len(patients),
		Pagination: params.CalculateMeta(len(patients)),
	}
}

// Register appends a patient. A blank name registers nothing and reports false.
func (s *Service) Register(ctx context.Context, in Intake) (*clinic.Patient, bool) {
	ctx, span := tracer.Start(ctx, "queue.Register", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	s.mu.Lock()
	p, ok := s.queue.Register(in)
	position := s.queue.Len() - 1
	if ok {
		s.syncEditor()
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug().Msg("registration skipped: empty name")
		span.SetAttributes(attribute.Bool("patient.registered", false))
		return nil, false
	}

	span.SetAttributes(attribute.String("patient.id", p.ID), attribute.Bool("patient.registered", true))
	if s.metrics != nil {
		s.metrics.RecordPatientOperation(ctx, "register")
	}
	s.logger.Info().Str("patient_id", p.ID).Int("position", position).Msg("patient registered")

	s.publish(ctx, messaging.EventPatientRegistered, messaging.PatientRegisteredEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientRegistered),
		Data: messaging.PatientRegisteredData{
			PatientID: p.ID,
			Name:      p.Name,
			Age:       p.Age,
			Gender:    string(p.Gender),
			Position:  position,
		},
	})
	return &p, true
}

// SetStatus changes a patient's status without touching the cursor or the
// draft. Unknown ids report false.
func (s *Service) SetStatus(ctx context.Context, patientID string, status clinic.PatientStatus) bool {
	ctx, span := tracer.Start(ctx, "queue.SetStatus",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("patient.id", patientID),
			attribute.String("patient.status", string(status)),
		),
	)
	defer span.End()

	s.mu.Lock()
	old, ok := s.queue.SetStatus(patientID, status)
	s.mu.Unlock()

	if !ok {
		s.logger.Debug().Str("patient_id", patientID).Msg("status change skipped: unknown patient")
		return false
	}

	if s.metrics != nil {
		s.metrics.RecordPatientOperation(ctx, "set_status")
	}
	s.logger.Info().
		Str("patient_id", patientID).
		Str("old_status", string(old)).
		Str("new_status", string(status)).
		Msg("patient status changed")

	if old != status {
		s.publishStatusChange(ctx, patientID, old, status)
	}
	return true
}

func (s *Service) Current(ctx context.Context) CurrentView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := CurrentView{Total: s.queue.Len()}
	cur, ok := s.queue.Current()
	if !ok {
		return view
	}
	draft := s.editor.Draft()
	view.Patient = &cur
	view.Draft = &draft
	view.Position = s.queue.Cursor() + 1
	return view
}

// editDraft runs fn against the editor under mu and returns the new draft.
func (s *Service) editDraft(ctx context.Context, operation string, fn func(e *diagnosis.Editor) error) (clinic.StructuredDiagnosis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.Len() == 0 {
		return clinic.StructuredDiagnosis{}, ErrEmptyQueue
	}
	if err := fn(s.editor); err != nil {
		return clinic.StructuredDiagnosis{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordDraftEdit(ctx, operation)
	}
	return s.editor.Draft(), nil
}

func (s *Service) SetSummary(ctx context.Context, text string) (clinic.StructuredDiagnosis, error) {
	return s.editDraft(ctx, "set_summary", func(e *diagnosis.Editor) error {
		e.SetSummary(text)
		return nil
	})
}

func (s *Service) AddDietItem(ctx context.Context, kind diagnosis.DietKind) (clinic.StructuredDiagnosis, error) {
	return s.editDraft(ctx, "add_diet_item", func(e *diagnosis.Editor) error {
		_, err := e.AddDietItem(kind)
		return err
	})
}

func (s *Service) UpdateDietItem(ctx context.Context, kind diagnosis.DietKind, index int, text string) (clinic.StructuredDiagnosis, error) {
	return s.editDraft(ctx, "update_diet_item", func(e *diagnosis.Editor) error {
		_, err := e.UpdateDietItem(kind, index, text)
		return err
	})
}

func (s *Service) AddMedication(ctx context.Context) (clinic.Medication, clinic.StructuredDiagnosis, error) {
	var med clinic.Medication
	draft, err := s.editDraft(ctx, "add_medication", func(e *diagnosis.Editor) error {
		med = e.AddMedication()
		return nil
	})
	return med, draft, err
}

// UpdateMedication reports false, with the draft unchanged, for unknown ids.
func (s *Service) UpdateMedication(ctx context.Context, id string, patch diagnosis.MedicationPatch) (bool, clinic.StructuredDiagnosis, error) {
	var found bool
	draft, err := s.editDraft(ctx, "update_medication", func(e *diagnosis.Editor) error {
		var err error
		found, err = e.UpdateMedication(id, patch)
		return err
	})
	return found, draft, err
}

func (s *Service) RemoveMedication(ctx context.Context, id string) (bool, clinic.StructuredDiagnosis, error) {
	var found bool
	draft, err := s.editDraft(ctx, "remove_medication", func(e *diagnosis.Editor) error {
		found = e.RemoveMedication(id)
		return nil
	})
	return found, draft, err
}

// Advance commits the draft to the current patient, marks it Complete,
// moves the cursor and reseeds the draft from the new current patient,
// all under one lock.
func (s *Service) Advance(ctx context.Context) (*AdvanceResult, error) {
	ctx, span := tracer.Start(ctx, "queue.Advance", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	s.mu.Lock()
	before, ok := s.queue.Current()
	if !ok {
		s.mu.Unlock()
		return nil, ErrEmptyQueue
	}
	done, _ := s.queue.Advance(s.editor.Draft())
	next, _ := s.queue.Current()
	s.editor.Seed(&next)
	result := &AdvanceResult{
		Completed:      done,
		Next:           next,
		Draft:          s.editor.Draft(),
		Position:       s.queue.Cursor() + 1,
		Total:          s.queue.Len(),
		DisplayAfterMs: s.transitionDelay.Milliseconds(),
	}
	s.mu.Unlock()

	committed, _ := done.Diagnosis.Get()
	span.SetAttributes(
		attribute.String("patient.id", done.ID),
		attribute.String("next_patient.id", next.ID),
		attribute.Int("diagnosis.medications", len(committed.Medications)),
	)
	if s.metrics != nil {
		s.metrics.RecordEncounterCompleted(ctx, len(committed.Medications))
	}
	s.logger.Info().
		Str("patient_id", done.ID).
		Str("next_patient_id", next.ID).
		Int("medications", len(committed.Medications)).
		Msg("encounter completed")

	if before.Status != clinic.StatusComplete {
		s.publishStatusChange(ctx, done.ID, before.Status, clinic.StatusComplete)
	}
	s.publish(ctx, messaging.EventEncounterCompleted, messaging.EncounterCompletedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventEncounterCompleted),
		Data: messaging.EncounterCompletedData{
			PatientID:        done.ID,
			MedicationCount:  len(committed.Medications),
			RecommendedCount: len(committed.Diet.Recommended),
			AvoidCount:       len(committed.Diet.Avoid),
			NextPatientID:    next.ID,
			CompletedAt:      time.Now().UTC(),
		},
	})
	return result, nil
}

func (s *Service) publishStatusChange(ctx context.Context, patientID string, old, status clinic.PatientStatus) {
	s.publish(ctx, messaging.EventPatientStatusChanged, messaging.PatientStatusChangedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientStatusChanged),
		Data: messaging.PatientStatusChangedData{
			PatientID: patientID,
			OldStatus: string(old),
			NewStatus: string(status),
			ChangedAt: time.Now().UTC(),
		},
	})
}

// publish never fails the caller; the queue change has already happened.
func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.logger.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
	}
}
