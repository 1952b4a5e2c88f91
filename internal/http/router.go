package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/queue"
	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/session"
)

// Metrics is everything the router records. *telemetry.Metrics satisfies it.
type Metrics interface {
	HTTPRecorder
	session.MetricsRecorder
}

// Deps are the already-built components the router wires together.
type Deps struct {
	Queue       queue.ServiceInterface
	Tokens      *session.Tokens
	Permissions session.Permissions
	Metrics     Metrics
	RoleMetrics session.RoleRecorder
	Logger      zerolog.Logger
	ServiceName string
}

// SetupRouter initializes all routes for the application. CORS wraps the
// returned router so preflight requests never reach route matching.
func SetupRouter(d Deps) *mux.Router {
	queueHandler := queue.NewHandler(d.Queue)
	sessionHandler := session.NewHandler(d.Tokens, d.RoleMetrics, d.Logger)

	r := mux.NewRouter()
	r.Use(otelmux.Middleware(d.ServiceName))
	r.Use(Recovery(d.Logger))
	r.Use(RequestLogger(d.Logger, d.Metrics))

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"` + d.ServiceName + `"}`))
	}).Methods("GET")

	// Role selection and logout
	r.HandleFunc("/session", sessionHandler.SelectRole).Methods("POST")
	r.HandleFunc("/session", sessionHandler.Logout).Methods("DELETE")

	guard := func(permission string, h http.HandlerFunc) http.Handler {
		return session.Middleware(d.Tokens, d.Metrics, d.Logger)(
			session.RequirePermission(permission, d.Permissions, d.Metrics, d.Logger)(h),
		)
	}

	// Reception workspace
	r.Handle("/reception/queue", guard("queue:view", queueHandler.ListQueue)).Methods("GET")
	r.Handle("/reception/patients", guard("queue:register", queueHandler.RegisterPatient)).Methods("POST")
	r.Handle("/reception/patients/{id}/status", guard("queue:status", queueHandler.UpdateStatus)).Methods("PUT")

	// Doctor workspace
	r.Handle("/doctor/current", guard("encounter:view", queueHandler.GetCurrent)).Methods("GET")
	r.Handle("/doctor/draft/summary", guard("encounter:edit", queueHandler.SetSummary)).Methods("PUT")
	r.Handle("/doctor/draft/diet/{kind}", guard("encounter:edit", queueHandler.AddDietItem)).Methods("POST")
	r.Handle("/doctor/draft/diet/{kind}/{index}", guard("encounter:edit", queueHandler.UpdateDietItem)).Methods("PUT")
	r.Handle("/doctor/draft/medications", guard("encounter:edit", queueHandler.AddMedication)).Methods("POST")
	r.Handle("/doctor/draft/medications/{id}", guard("encounter:edit", queueHandler.UpdateMedication)).Methods("PATCH")
	r.Handle("/doctor/draft/medications/{id}", guard("encounter:edit", queueHandler.RemoveMedication)).Methods("DELETE")
	r.Handle("/doctor/advance", guard("encounter:finalize", queueHandler.Advance)).Methods("POST")

	return r
}
