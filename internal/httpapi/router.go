package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/auth"
	"github.com/lpms-app/lpms/internal/events"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/lpms-app/lpms/internal/service/propertyservice"
	"github.com/rs/zerolog/log"
)

// PropertyStore persists a manager's properties
type PropertyStore interface {
	ListProperties(ctx context.Context, ownerID string) ([]property.Property, error)
	GetProperty(ctx context.Context, ownerID string, id uuid.UUID) (property.Property, error)
	CreateProperty(ctx context.Context, ownerID string, p property.Property) (property.Property, error)
	UpdateProperty(ctx context.Context, ownerID string, id uuid.UUID, mutate propertyservice.Mutator) (property.Property, error)
}

// MaintenanceStore persists maintenance records
type MaintenanceStore interface {
	ListMaintenances(ctx context.Context, ownerID string, propertyID uuid.UUID) ([]property.Maintenance, error)
	CreateMaintenance(ctx context.Context, ownerID string, m property.Maintenance) (property.Maintenance, error)
}

// Server holds dependencies for HTTP handlers
type Server struct {
	Properties      PropertyStore
	Maintenances    MaintenanceStore
	Events          events.Publisher
	RateLimitConfig RateLimitInfo
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error         string            `json:"error"`
	Errors        map[string]string `json:"errors,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// writeError writes an error body carrying the request's correlation ID
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, errorResponse{
		Error:         msg,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}

// writeFieldErrors writes a 422 with per-field messages
func writeFieldErrors(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:         "validation failed",
		Errors:        fields,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}

// publish emits an event; failures are logged and never fail the request
func (s *Server) publish(r *http.Request, eventType string, data any) {
	if s.Events == nil {
		return
	}
	env := events.NewEnvelope(eventType, GetCorrelationID(r.Context()), data)
	if err := s.Events.Publish(r.Context(), env); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// Routes creates the HTTP router with all property management endpoints
func (s *Server) Routes(jwt auth.JWTCfg, users auth.UserResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	// Health check (unauthenticated)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	})
	r.Get("/info", s.Info)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(users, jwt))
		r.Use(RateLimitMiddleware(s.RateLimitConfig))

		r.Route("/property/properties", func(r chi.Router) {
			r.Get("/", s.ListProperties)
			r.Post("/", s.CreateProperty)
			r.Get("/{id}", s.GetProperty)
			r.Patch("/{id}", s.PatchProperty)
		})

		r.Get("/api/maintenances/{propertyID}", s.ListMaintenances)
		r.Post("/api/maintenances/{propertyID}", s.CreateMaintenance)
	})

	log.Info().Msg("HTTP routes registered")
	return r
}

// parseIDParam reads a UUID path parameter
func parseIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
