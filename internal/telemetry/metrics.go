package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/WailSalutem-Health-Care/frontdesk-service"

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Queue metrics
	PatientTotal   metric.Int64Counter
	EncounterTotal metric.Int64Counter
	DraftEditTotal metric.Int64Counter
	QueueLength    metric.Int64UpDownCounter

	// Session metrics
	RoleSelectedTotal       metric.Int64Counter
	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

// InitMetrics registers every instrument against the global meter provider.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.HTTPDurationMs, err = meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.PatientTotal, err = meter.Int64Counter(
		"patient_total",
		metric.WithDescription("Total number of patient queue operations"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, err
	}

	if m.EncounterTotal, err = meter.Int64Counter(
		"encounter_completed_total",
		metric.WithDescription("Encounters finalized by the doctor"),
		metric.WithUnit("{encounter}"),
	); err != nil {
		return nil, err
	}

	if m.DraftEditTotal, err = meter.Int64Counter(
		"diagnosis_draft_edits_total",
		metric.WithDescription("Edits applied to the diagnosis draft"),
		metric.WithUnit("{edit}"),
	); err != nil {
		return nil, err
	}

	if m.QueueLength, err = meter.Int64UpDownCounter(
		"queue_length",
		metric.WithDescription("Patients currently in the queue"),
		metric.WithUnit("{patient}"),
	); err != nil {
		return nil, err
	}

	if m.RoleSelectedTotal, err = meter.Int64Counter(
		"session_role_selected_total",
		metric.WithDescription("Workspace role selections"),
		metric.WithUnit("{selection}"),
	); err != nil {
		return nil, err
	}

	if m.AuthFailuresTotal, err = meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of session token failures"),
		metric.WithUnit("{failure}"),
	); err != nil {
		return nil, err
	}

	if m.PermissionCheckDuration, err = meter.Float64Histogram(
		"permission_check_duration_ms",
		metric.WithDescription("Permission check duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordPatientOperation counts register and status operations; a
// registration also grows the queue gauge.
func (m *Metrics) RecordPatientOperation(ctx context.Context, operation string) {
	m.PatientTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
	if operation == "register" {
		m.QueueLength.Add(ctx, 1)
	}
}

func (m *Metrics) RecordQueueSeeded(ctx context.Context, n int) {
	m.QueueLength.Add(ctx, int64(n))
}

func (m *Metrics) RecordEncounterCompleted(ctx context.Context, medications int) {
	m.EncounterTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("has_medications", medications > 0),
	))
}

func (m *Metrics) RecordDraftEdit(ctx context.Context, operation string) {
	m.DraftEditTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (m *Metrics) RecordRoleSelected(ctx context.Context, role string) {
	m.RoleSelectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("role", role),
	))
}

// RecordAuthFailure records a session token failure
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPermissionCheck records a permission check duration metric
func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
