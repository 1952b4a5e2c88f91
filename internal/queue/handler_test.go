package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/diagnosis"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/pagination"
)

// mockService implements ServiceInterface for testing
type mockService struct {
	listQueueFunc        func(ctx context.Context, params pagination.Params) QueueListResponse
	registerFunc         func(ctx context.Context, in Intake) (*clinic.Patient, bool)
	setStatusFunc        func(ctx context.Context, patientID string, status clinic.PatientStatus) bool
	currentFunc          func(ctx context.Context) CurrentView
	setSummaryFunc       func(ctx context.Context, text string) (clinic.StructuredDiagnosis, error)
	addDietItemFunc      func(ctx context.Context, kind diagnosis.DietKind) (clinic.StructuredDiagnosis, error)
	updateDietItemFunc   func(ctx context.Context, kind diagnosis.DietKind, index int, text string) (clinic.StructuredDiagnosis, error)
	addMedicationFunc    func(ctx context.Context) (clinic.Medication, clinic.StructuredDiagnosis, error)
	updateMedicationFunc func(ctx context.Context, id string, patch diagnosis.MedicationPatch) (bool, clinic.StructuredDiagnosis, error)
	removeMedicationFunc func(ctx context.Context, id string) (bool, clinic.StructuredDiagnosis, error)
	advanceFunc          func(ctx context.Context) (*AdvanceResult, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockService) ListQueue(ctx context.Context, params pagination.Params) QueueListResponse {
	if m.listQueueFunc != nil {
		return m.listQueueFunc(ctx, params)
	}
	return QueueListResponse{}
}

func (m *mockService) Register(ctx context.Context, in Intake) (*clinic.Patient, bool) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, in)
	}
	return nil, false
}

func (m *mockService) SetStatus(ctx context.Context, patientID string, status clinic.PatientStatus) bool {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, patientID, status)
	}
	return false
}

func (m *mockService) Current(ctx context.Context) CurrentView {
	if m.currentFunc != nil {
		return m.currentFunc(ctx)
	}
	return CurrentView{}
}

func (m *mockService) SetSummary(ctx context.Context, text string) (clinic.StructuredDiagnosis, error) {
	if m.setSummaryFunc != nil {
		return m.setSummaryFunc(ctx, text)
	}
	return clinic.StructuredDiagnosis{}, errNotImplemented
}

func (m *mockService) AddDietItem(ctx context.Context, kind diagnosis.DietKind) (clinic.StructuredDiagnosis, error) {
	if m.addDietItemFunc != nil {
		return m.addDietItemFunc(ctx, kind)
	}
	return clinic.StructuredDiagnosis{}, errNotImplemented
}

func (m *mockService) UpdateDietItem(ctx context.Context, kind diagnosis.DietKind, index int, text string) (clinic.StructuredDiagnosis, error) {
	if m.updateDietItemFunc != nil {
		return m.updateDietItemFunc(ctx, kind, index, text)
	}
	return clinic.StructuredDiagnosis{}, errNotImplemented
}

func (m *mockService) AddMedication(ctx context.Context) (clinic.Medication, clinic.StructuredDiagnosis, error) {
	if m.addMedicationFunc != nil {
		return m.addMedicationFunc(ctx)
	}
	return clinic.Medication{}, clinic.StructuredDiagnosis{}, errNotImplemented
}

func (m *mockService) UpdateMedication(ctx context.Context, id string, patch diagnosis.MedicationPatch) (bool, clinic.StructuredDiagnosis, error) {
	if m.updateMedicationFunc != nil {
		return m.updateMedicationFunc(ctx, id, patch)
	}
	return false, clinic.StructuredDiagnosis{}, errNotImplemented
}

func (m *mockService) RemoveMedication(ctx context.Context, id string) (bool, clinic.StructuredDiagnosis, error) {
	if m.removeMedicationFunc != nil {
		return m.removeMedicationFunc(ctx, id)
	}
	return false, clinic.StructuredDiagnosis{}, errNotImplemented
}

func (m *mockService) Advance(ctx context.Context) (*AdvanceResult, error) {
	if m.advanceFunc != nil {
		return m.advanceFunc(ctx)
	}
	return nil, errNotImplemented
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	code, _ := body["error"].(string)
	return code
}

// TestHandlerRegisterPatient_Success tests successful registration
func TestHandlerRegisterPatient_Success(t *testing.T) {
	var got Intake
	svc := &mockService{
		registerFunc: func(ctx context.Context, in Intake) (*clinic.Patient, bool) {
			got = in
			return &clinic.Patient{ID: "P-1103", Name: in.Name, Status: clinic.StatusReady}, true
		},
	}
	h := NewHandler(svc)

	age := 51
	gender := "Other"
	req := httptest.NewRequest(http.MethodPost, "/reception/patients", jsonBody(t, RegisterPatientRequest{Name: "Sam Ortiz", Age: &age, Gender: &gender}))
	rec := httptest.NewRecorder()
	h.RegisterPatient(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}
	if got.Age != 51 || got.Gender != clinic.GenderOther {
		t.Errorf("Expected intake age 51 / Other, got %+v", got)
	}

	var resp RegisterPatientResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Registered || resp.Patient == nil || resp.Patient.ID != "P-1103" {
		t.Errorf("Expected registered patient P-1103, got %+v", resp)
	}
}

// TestHandlerRegisterPatient_EmptyName tests the no-op response
func TestHandlerRegisterPatient_EmptyName(t *testing.T) {
	h := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/reception/patients", jsonBody(t, RegisterPatientRequest{Name: ""}))
	rec := httptest.NewRecorder()
	h.RegisterPatient(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var resp RegisterPatientResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Registered || resp.Patient != nil {
		t.Errorf("Expected registered=false without patient, got %+v", resp)
	}
}

// TestHandlerRegisterPatient_Validation tests rejected intake values
func TestHandlerRegisterPatient_Validation(t *testing.T) {
	h := NewHandler(&mockService{
		registerFunc: func(ctx context.Context, in Intake) (*clinic.Patient, bool) {
			t.Error("Service should not be called")
			return nil, false
		},
	})

	zero := 0
	bad := "Unknown"
	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"invalid json", "not-an-object", "invalid_request"},
		{"zero age", RegisterPatientRequest{Name: "A", Age: &zero}, "validation_error"},
		{"bad gender", RegisterPatientRequest{Name: "A", Gender: &bad}, "invalid_gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/reception/patients", jsonBody(t, tt.body))
			rec := httptest.NewRecorder()
			h.RegisterPatient(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
			if code := decodeError(t, rec); code != tt.code {
				t.Errorf("Expected error %s, got %s", tt.code, code)
			}
		})
	}
}

// TestHandlerUpdateStatus tests status parsing and the unknown-id no-op
func TestHandlerUpdateStatus(t *testing.T) {
	var gotID string
	var gotStatus clinic.PatientStatus
	h := NewHandler(&mockService{
		setStatusFunc: func(ctx context.Context, id string, status clinic.PatientStatus) bool {
			gotID, gotStatus = id, status
			return id == "P-1042"
		},
	})

	tests := []struct {
		name       string
		id         string
		status     string
		wantCode   int
		wantUpdate bool
	}{
		{"known patient", "P-1042", "Lab Pending", http.StatusOK, true},
		{"unknown patient", "nonexistent-id", "Complete", http.StatusOK, false},
		{"invalid status", "P-1042", "Discharged", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/reception/patients/"+tt.id+"/status", jsonBody(t, UpdateStatusRequest{Status: tt.status}))
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			h.UpdateStatus(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusOK {
				if code := decodeError(t, rec); code != "invalid_status" {
					t.Errorf("Expected invalid_status, got %s", code)
				}
				return
			}
			var resp StatusResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Updated != tt.wantUpdate {
				t.Errorf("Expected updated=%v, got %v", tt.wantUpdate, resp.Updated)
			}
			if gotID != tt.id || string(gotStatus) != tt.status {
				t.Errorf("Expected service called with %s/%s, got %s/%s", tt.id, tt.status, gotID, gotStatus)
			}
		})
	}
}

// TestHandlerListQueue tests query parameter parsing
func TestHandlerListQueue(t *testing.T) {
	var got pagination.Params
	h := NewHandler(&mockService{
		listQueueFunc: func(ctx context.Context, params pagination.Params) QueueListResponse {
			got = params
			return QueueListResponse{Success: true, Total: 3}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reception/queue?page=2&limit=1", nil)
	rec := httptest.NewRecorder()
	h.ListQueue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if got.Page != 2 || got.Limit != 1 {
		t.Errorf("Expected page 2 limit 1, got %+v", got)
	}
}

// TestHandlerDraftErrors tests error code mapping for draft endpoints
func TestHandlerDraftErrors(t *testing.T) {
	svc := &mockService{
		setSummaryFunc: func(ctx context.Context, text string) (clinic.StructuredDiagnosis, error) {
			return clinic.StructuredDiagnosis{}, ErrEmptyQueue
		},
		updateDietItemFunc: func(ctx context.Context, kind diagnosis.DietKind, index int, text string) (clinic.StructuredDiagnosis, error) {
			return clinic.StructuredDiagnosis{}, diagnosis.ErrIndexOutOfRange
		},
		updateMedicationFunc: func(ctx context.Context, id string, patch diagnosis.MedicationPatch) (bool, clinic.StructuredDiagnosis, error) {
			return false, clinic.StructuredDiagnosis{}, clinic.ErrInvalidInstruction
		},
		advanceFunc: func(ctx context.Context) (*AdvanceResult, error) {
			return nil, ErrEmptyQueue
		},
	}
	h := NewHandler(svc)

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		method   string
		body     interface{}
		vars     map[string]string
		wantCode int
		wantErr  string
	}{
		{"summary on empty queue", h.SetSummary, http.MethodPut, SummaryRequest{Summary: "x"}, nil, http.StatusConflict, "empty_queue"},
		{"advance on empty queue", h.Advance, http.MethodPost, nil, nil, http.StatusConflict, "empty_queue"},
		{"diet index out of range", h.UpdateDietItem, http.MethodPut, DietItemRequest{Text: "x"}, map[string]string{"kind": "avoid", "index": "9"}, http.StatusBadRequest, "index_out_of_range"},
		{"non-numeric diet index", h.UpdateDietItem, http.MethodPut, DietItemRequest{Text: "x"}, map[string]string{"kind": "avoid", "index": "abc"}, http.StatusBadRequest, "index_out_of_range"},
		{"bad diet kind", h.AddDietItem, http.MethodPost, nil, map[string]string{"kind": "snacks"}, http.StatusBadRequest, "invalid_diet_kind"},
		{"bad instruction", h.UpdateMedication, http.MethodPatch, map[string]string{"instruction": "At Night"}, map[string]string{"id": "med-1"}, http.StatusBadRequest, "invalid_instruction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != nil {
				req = httptest.NewRequest(tt.method, "/doctor", jsonBody(t, tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/doctor", nil)
			}
			if tt.vars != nil {
				req = mux.SetURLVars(req, tt.vars)
			}
			rec := httptest.NewRecorder()
			tt.handler(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if code := decodeError(t, rec); code != tt.wantErr {
				t.Errorf("Expected error %s, got %s", tt.wantErr, code)
			}
		})
	}
}

// TestHandlerDoctorFlow tests the doctor endpoints against a real service
func TestHandlerDoctorFlow(t *testing.T) {
	svc, _, _ := newTestService(threePatients())
	h := NewHandler(svc)

	do := func(handler http.HandlerFunc, method string, body interface{}, vars map[string]string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != nil {
			req = httptest.NewRequest(method, "/doctor", jsonBody(t, body))
		} else {
			req = httptest.NewRequest(method, "/doctor", nil)
		}
		if vars != nil {
			req = mux.SetURLVars(req, vars)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec
	}

	if rec := do(h.SetSummary, http.MethodPut, SummaryRequest{Summary: "stable"}, nil); rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from SetSummary, got %d", rec.Code)
	}
	if rec := do(h.AddDietItem, http.MethodPost, nil, map[string]string{"kind": "recommended"}); rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from AddDietItem, got %d", rec.Code)
	}
	if rec := do(h.UpdateDietItem, http.MethodPut, DietItemRequest{Text: "oats"}, map[string]string{"kind": "recommended", "index": "1"}); rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from UpdateDietItem, got %d", rec.Code)
	}

	rec := do(h.AddMedication, http.MethodPost, nil, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from AddMedication, got %d", rec.Code)
	}
	var added MedicationResponse
	json.NewDecoder(rec.Body).Decode(&added)
	if added.Medication == nil || added.Medication.Instruction != clinic.AfterFood {
		t.Fatalf("Expected new medication after food, got %+v", added.Medication)
	}

	rec = do(h.UpdateMedication, http.MethodPatch, map[string]interface{}{
		"name":    "Metformin",
		"timings": map[string]bool{"evening": true},
	}, map[string]string{"id": added.Medication.ID})
	var updated MedicationResponse
	json.NewDecoder(rec.Body).Decode(&updated)
	if !updated.Found || updated.Medication.Name != "Metformin" || !updated.Medication.Timings.Evening || updated.Medication.Timings.Morning {
		t.Errorf("Unexpected medication after patch: %+v", updated.Medication)
	}

	rec = do(h.RemoveMedication, http.MethodDelete, nil, map[string]string{"id": "missing"})
	var removed MedicationResponse
	json.NewDecoder(rec.Body).Decode(&removed)
	if removed.Found || len(removed.Draft.Medications) != 1 {
		t.Errorf("Expected no-op removal, got %+v", removed)
	}

	rec = do(h.Advance, http.MethodPost, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from Advance, got %d", rec.Code)
	}
	var adv AdvanceResponse
	json.NewDecoder(rec.Body).Decode(&adv)
	if adv.AdvanceResult == nil || adv.Completed.ID != "P-1042" || adv.Next.ID != "P-1058" {
		t.Fatalf("Unexpected advance response: %+v", adv.AdvanceResult)
	}
	stored, ok := adv.Completed.Diagnosis.Get()
	if !ok || stored.Summary != "stable" || stored.Diet.Recommended[1] != "oats" || stored.Medications[0].Name != "Metformin" {
		t.Errorf("Expected committed draft, got %+v", stored)
	}

	rec = do(h.GetCurrent, http.MethodGet, nil, nil)
	var view CurrentView
	json.NewDecoder(rec.Body).Decode(&view)
	if view.Patient == nil || view.Patient.ID != "P-1058" || view.Draft.Summary != "" {
		t.Errorf("Expected fresh draft for P-1058, got %+v", view)
	}
}
