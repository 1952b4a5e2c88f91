package queue

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/diagnosis"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/pagination"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type RegisterPatientResponse struct {
	Success    bool            `json:"success"`
	Registered bool            `json:"registered"`
	Message    string          `json:"message"`
	Patient    *clinic.Patient `json:"patient,omitempty"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Updated bool   `json:"updated"`
	Message string `json:"message"`
}

type DraftResponse struct {
	Success bool                       `json:"success"`
	Draft   clinic.StructuredDiagnosis `json:"draft"`
}

type MedicationResponse struct {
	Success    bool                       `json:"success"`
	Found      bool                       `json:"found"`
	Medication *clinic.Medication         `json:"medication,omitempty"`
	Draft      clinic.StructuredDiagnosis `json:"draft"`
}

type AdvanceResponse struct {
	Success bool `json:"success"`
	*AdvanceResult
}

// Reception workspace

func (h *Handler) ListQueue(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)
	respondJSON(w, http.StatusOK, h.service.ListQueue(r.Context(), params))
}

// RegisterPatient answers 200 with registered=false for a blank name so the
// form can stay open without treating it as an error.
func (h *Handler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	in := Intake{Name: req.Name}
	if req.Age != nil {
		if *req.Age <= 0 {
			respondError(w, http.StatusBadRequest, "validation_error", ErrInvalidAge.Error())
			return
		}
		in.Age = *req.Age
	}
	if req.Gender != nil && *req.Gender != "" {
		g, err := clinic.ParseGender(*req.Gender)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_gender", err.Error())
			return
		}
		in.Gender = g
	}

	p, ok := h.service.Register(r.Context(), in)
	if !ok {
		respondJSON(w, http.StatusOK, RegisterPatientResponse{
			Success:    true,
			Registered: false,
			Message:    "Name is empty, nothing registered",
		})
		return
	}

	respondJSON(w, http.StatusCreated, RegisterPatientResponse{
		Success:    true,
		Registered: true,
		Message:    "Patient added to queue",
		Patient:    p,
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	status, err := clinic.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	if !h.service.SetStatus(r.Context(), id, status) {
		respondJSON(w, http.StatusOK, StatusResponse{Success: true, Updated: false, Message: "No patient with that id"})
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true, Updated: true, Message: "Status updated"})
}

// Doctor workspace

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Current(r.Context()))
}

func (h *Handler) SetSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	draft, err := h.service.SetSummary(r.Context(), req.Summary)
	h.respondDraft(w, draft, err)
}

func (h *Handler) AddDietItem(w http.ResponseWriter, r *http.Request) {
	kind, err := diagnosis.ParseDietKind(mux.Vars(r)["kind"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	draft, err := h.service.AddDietItem(r.Context(), kind)
	h.respondDraft(w, draft, err)
}

func (h *Handler) UpdateDietItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := diagnosis.ParseDietKind(vars["kind"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondServiceError(w, diagnosis.ErrIndexOutOfRange)
		return
	}

	var req DietItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	draft, err := h.service.UpdateDietItem(r.Context(), kind, index, req.Text)
	h.respondDraft(w, draft, err)
}

func (h *Handler) AddMedication(w http.ResponseWriter, r *http.Request) {
	med, draft, err := h.service.AddMedication(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, MedicationResponse{Success: true, Found: true, Medication: &med, Draft: draft})
}

func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch diagnosis.MedicationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	found, draft, err := h.service.UpdateMedication(r.Context(), id, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, MedicationResponse{Success: true, Found: found, Medication: findMedication(draft, id), Draft: draft})
}

func (h *Handler) RemoveMedication(w http.ResponseWriter, r *http.Request) {
	found, draft, err := h.service.RemoveMedication(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, MedicationResponse{Success: true, Found: found, Draft: draft})
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Advance(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AdvanceResponse{Success: true, AdvanceResult: res})
}

func (h *Handler) respondDraft(w http.ResponseWriter, draft clinic.StructuredDiagnosis, err error) {
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, DraftResponse{Success: true, Draft: draft})
}

func findMedication(d clinic.StructuredDiagnosis, id string) *clinic.Medication {
	for i := range d.Medications {
		if d.Medications[i].ID == id {
			return &d.Medications[i]
		}
	}
	return nil
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyQueue):
		respondError(w, http.StatusConflict, "empty_queue", err.Error())
	case errors.Is(err, diagnosis.ErrIndexOutOfRange):
		respondError(w, http.StatusBadRequest, "index_out_of_range", err.Error())
	case errors.Is(err, diagnosis.ErrInvalidDietKind):
		respondError(w, http.StatusBadRequest, "invalid_diet_kind", err.Error())
	case errors.Is(err, clinic.ErrInvalidInstruction):
		respondError(w, http.StatusBadRequest, "invalid_instruction", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
