package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lpms-app/lpms/internal/auth"
	"github.com/lpms-app/lpms/internal/events"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/lpms-app/lpms/internal/service/propertyservice"
	"github.com/rs/zerolog/log"
)

// ListMaintenances handles GET /api/maintenances/{propertyID}
func (s *Server) ListMaintenances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	propertyID, ok := parseIDParam(r, "propertyID")
	if !ok {
		writeError(w, r, http.StatusNotFound, "property not found")
		return
	}

	rows, err := s.Maintenances.ListMaintenances(ctx, auth.UserID(ctx), propertyID)
	if err != nil {
		if errors.Is(err, propertyservice.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "property not found")
			return
		}
		logger.Error().Err(err).Msg("failed to list maintenances")
		writeError(w, r, http.StatusInternalServerError, "failed to list maintenances")
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// CreateMaintenance handles POST /api/maintenances/{propertyID}
func (s *Server) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	propertyID, ok := parseIDParam(r, "propertyID")
	if !ok {
		writeError(w, r, http.StatusNotFound, "property not found")
		return
	}

	var m property.Maintenance
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}
	m.PropertyID = propertyID

	if err := validateStruct(m); err != nil {
		var fe fieldErrors
		if errors.As(err, &fe) {
			writeFieldErrors(w, r, fe)
			return
		}
		logger.Error().Err(err).Msg("failed to validate maintenance")
		writeError(w, r, http.StatusInternalServerError, "failed to create maintenance")
		return
	}

	created, err := s.Maintenances.CreateMaintenance(ctx, auth.UserID(ctx), m)
	if err != nil {
		switch {
		case errors.Is(err, propertyservice.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "property not found")
		case errors.Is(err, propertyservice.ErrUnknownUnit):
			writeFieldErrors(w, r, map[string]string{"unit": "Unknown unit"})
		default:
			logger.Error().Err(err).Msg("failed to create maintenance")
			writeError(w, r, http.StatusInternalServerError, "failed to create maintenance")
		}
		return
	}

	logger.Info().
		Str("maintenance_id", created.ID.String()).
		Str("unit_id", created.UnitID.String()).
		Msg("maintenance created")
	s.publish(r, events.MaintenanceCreated, created)
	writeJSON(w, http.StatusCreated, created)
}
