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

// badPatchError marks a patch whose values do not fit the record's types
type badPatchError struct {
	err error
}

func (e badPatchError) Error() string { return e.err.Error() }

// ListProperties handles GET /property/properties
func (s *Server) ListProperties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	props, err := s.Properties.ListProperties(ctx, auth.UserID(ctx))
	if err != nil {
		logger.Error().Err(err).Msg("failed to list properties")
		writeError(w, r, http.StatusInternalServerError, "failed to list properties")
		return
	}

	writeJSON(w, http.StatusOK, props)
}

// CreateProperty handles POST /property/properties
func (s *Server) CreateProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var p property.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := validateStruct(p); err != nil {
		var fe fieldErrors
		if errors.As(err, &fe) {
			writeFieldErrors(w, r, fe)
			return
		}
		logger.Error().Err(err).Msg("failed to validate property")
		writeError(w, r, http.StatusInternalServerError, "failed to create property")
		return
	}

	created, err := s.Properties.CreateProperty(ctx, auth.UserID(ctx), p)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create property")
		writeError(w, r, http.StatusInternalServerError, "failed to create property")
		return
	}

	logger.Info().Str("property_id", created.ID.String()).Msg("property created")
	writeJSON(w, http.StatusCreated, created)
}

// GetProperty handles GET /property/properties/{id}
func (s *Server) GetProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusNotFound, "property not found")
		return
	}

	p, err := s.Properties.GetProperty(ctx, auth.UserID(ctx), id)
	if err != nil {
		if errors.Is(err, propertyservice.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "property not found")
			return
		}
		logger.Error().Err(err).Msg("failed to get property")
		writeError(w, r, http.StatusInternalServerError, "failed to get property")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// PatchProperty handles PATCH /property/properties/{id}
// The body is merged over the stored record; server-owned keys are ignored.
func (s *Server) PatchProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, r, http.StatusNotFound, "property not found")
		return
	}

	var patch property.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch == nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := s.Properties.UpdateProperty(ctx, auth.UserID(ctx), id, func(existing property.Property) (property.Property, error) {
		merged, err := property.Apply(existing, patch)
		if err != nil {
			return property.Property{}, badPatchError{err: err}
		}
		if err := validateStruct(merged); err != nil {
			return property.Property{}, err
		}
		return merged, nil
	})
	if err != nil {
		var fe fieldErrors
		var bad badPatchError
		switch {
		case errors.Is(err, propertyservice.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "property not found")
		case errors.As(err, &fe):
			writeFieldErrors(w, r, fe)
		case errors.As(err, &bad):
			writeError(w, r, http.StatusBadRequest, "invalid field type")
		default:
			logger.Error().Err(err).Str("property_id", id.String()).Msg("failed to update property")
			writeError(w, r, http.StatusInternalServerError, "failed to update property")
		}
		return
	}

	logger.Info().Str("property_id", id.String()).Msg("property updated")
	s.publish(r, events.PropertyUpdated, updated)
	writeJSON(w, http.StatusOK, updated)
}
