package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RoleRecorder counts role selections. Nil is allowed.
type RoleRecorder interface {
	RecordRoleSelected(ctx context.Context, role string)
}

type Handler struct {
	tokens  *Tokens
	metrics RoleRecorder
	logger  zerolog.Logger
}

func NewHandler(tokens *Tokens, metrics RoleRecorder, logger zerolog.Logger) *Handler {
	return &Handler{tokens: tokens, metrics: metrics, logger: logger}
}

type SelectRoleRequest struct {
	Role string `json:"role"`
}

type SelectRoleResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	Workspace Workspace `json:"workspace"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SelectRole moves a fresh gate out of the unset state and hands back a
// token for the chosen workspace.
func (h *Handler) SelectRole(w http.ResponseWriter, r *http.Request) {
	var req SelectRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_role", err.Error())
		return
	}

	var gate Gate
	if err := gate.Select(role); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_role", err.Error())
		return
	}

	token, exp, err := h.tokens.Issue(&gate)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token_failed", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRoleSelected(r.Context(), string(role))
	}
	h.logger.Info().Str("role", string(role)).Msg("workspace role selected")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SelectRoleResponse{
		Success:   true,
		Token:     token,
		Role:      role,
		Workspace: gate.Workspace(),
		ExpiresAt: exp,
	})
}

type LogoutResponse struct {
	Success   bool      `json:"success"`
	Workspace Workspace `json:"workspace"`
}

// Logout returns the caller to the login screen. Tokens are not tracked
// server side; the client discards its token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	gate := &Gate{}
	if _, tok, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok {
		if pr, err := h.tokens.Verify(tok); err == nil {
			gate = pr.Gate()
		}
	}
	if gate.Role() != RoleNone {
		h.logger.Info().Str("role", string(gate.Role())).Msg("session ended")
	}
	gate.Logout()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LogoutResponse{
		Success:   true,
		Workspace: gate.Workspace(),
	})
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}
