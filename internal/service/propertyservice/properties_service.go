package propertyservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/rs/zerolog/log"
)

// Mutator derives the updated record from the stored one
type Mutator func(existing property.Property) (property.Property, error)

// PropertyService stores properties and their units, scoped to the owning manager
type PropertyService struct {
	DB *pgxpool.Pool
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(db *pgxpool.Pool) *PropertyService {
	return &PropertyService{DB: db}
}

const propertyColumns = `
	id, property_name, property_lrl, number_of_units, number_of_floors,
	water_rate_per_unit, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (property.Property, error) {
	var p property.Property
	var updatedAt time.Time
	if err := row.Scan(&p.ID, &p.Name, &p.LRL, &p.NumberOfUnits, &p.NumberOfFloors,
		&p.WaterRatePerUnit, &updatedAt); err != nil {
		return property.Property{}, err
	}
	p.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return p, nil
}

// ListProperties returns the manager's properties ordered by name, units included
func (s *PropertyService) ListProperties(ctx context.Context, ownerID string) ([]property.Property, error) {
	logger := log.With().Logger()

	rows, err := s.DB.Query(ctx, `SELECT `+propertyColumns+`
		FROM property
		WHERE owner_id = $1
		ORDER BY property_name, id`, ownerID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list properties")
		return nil, err
	}
	defer rows.Close()

	props := make([]property.Property, 0)
	index := map[uuid.UUID]int{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan property row")
			return nil, err
		}
		p.Units = []property.Unit{}
		index[p.ID] = len(props)
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("row iteration error")
		return nil, err
	}

	units, err := s.DB.Query(ctx, `
		SELECT u.id, u.property_id, u.unit_name, u.floor
		FROM unit u
		JOIN property p ON p.id = u.property_id
		WHERE p.owner_id = $1
		ORDER BY u.unit_name, u.id`, ownerID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list units")
		return nil, err
	}
	defer units.Close()

	for units.Next() {
		var u property.Unit
		if err := units.Scan(&u.ID, &u.PropertyID, &u.Name, &u.Floor); err != nil {
			logger.Error().Err(err).Msg("failed to scan unit row")
			return nil, err
		}
		if i, ok := index[u.PropertyID]; ok {
			props[i].Units = append(props[i].Units, u)
		}
	}
	return props, units.Err()
}

// GetProperty returns one property with its units
func (s *PropertyService) GetProperty(ctx context.Context, ownerID string, id uuid.UUID) (property.Property, error) {
	return getProperty(ctx, s.DB, ownerID, id, false)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getProperty(ctx context.Context, q querier, ownerID string, id uuid.UUID, forUpdate bool) (property.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM property WHERE owner_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanProperty(q.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return property.Property{}, ErrNotFound
		}
		log.Error().Err(err).Str("property_id", id.String()).Msg("failed to get property")
		return property.Property{}, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, property_id, unit_name, floor
		FROM unit WHERE property_id = $1
		ORDER BY unit_name, id`, id)
	if err != nil {
		return property.Property{}, fmt.Errorf("list units: %w", err)
	}
	units, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (property.Unit, error) {
		var u property.Unit
		err := row.Scan(&u.ID, &u.PropertyID, &u.Name, &u.Floor)
		return u, err
	})
	if err != nil {
		return property.Property{}, fmt.Errorf("scan units: %w", err)
	}
	p.Units = units
	return p, nil
}

// CreateProperty inserts a property and the units listed on it
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID string, p property.Property) (property.Property, error) {
	logger := log.With().Logger()

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return property.Property{}, err
	}
	defer tx.Rollback(ctx)

	created, err := scanProperty(tx.QueryRow(ctx, `
		INSERT INTO property (owner_id, property_name, property_lrl, number_of_units,
			number_of_floors, water_rate_per_unit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+propertyColumns,
		ownerID, p.Name, p.LRL, p.NumberOfUnits, p.NumberOfFloors, p.WaterRatePerUnit))
	if err != nil {
		logger.Error().Err(err).Msg("failed to insert property")
		return property.Property{}, err
	}

	created.Units = make([]property.Unit, 0, len(p.Units))
	for _, u := range p.Units {
		u.PropertyID = created.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO unit (property_id, unit_name, floor)
			VALUES ($1, $2, $3)
			RETURNING id`, created.ID, u.Name, u.Floor).Scan(&u.ID); err != nil {
			logger.Error().Err(err).Str("unit_name", u.Name).Msg("failed to insert unit")
			return property.Property{}, err
		}
		created.Units = append(created.Units, u)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit property")
		return property.Property{}, err
	}
	return created, nil
}

// UpdateProperty locks the stored record, passes it to mutate and writes
// back the editable fields of the result.
func (s *PropertyService) UpdateProperty(ctx context.Context, ownerID string, id uuid.UUID, mutate Mutator) (property.Property, error) {
	logger := log.With().Str("property_id", id.String()).Logger()

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return property.Property{}, err
	}
	defer tx.Rollback(ctx)

	existing, err := getProperty(ctx, tx, ownerID, id, true)
	if err != nil {
		return property.Property{}, err
	}

	next, err := mutate(existing)
	if err != nil {
		return property.Property{}, err
	}

	updated, err := scanProperty(tx.QueryRow(ctx, `
		UPDATE property SET
			property_name       = $3,
			property_lrl        = $4,
			number_of_units     = $5,
			number_of_floors    = $6,
			water_rate_per_unit = $7,
			updated_at          = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+propertyColumns,
		ownerID, id, next.Name, next.LRL, next.NumberOfUnits, next.NumberOfFloors, next.WaterRatePerUnit))
	if err != nil {
		logger.Error().Err(err).Msg("failed to update property")
		return property.Property{}, err
	}
	updated.Units = existing.Units

	if err := tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit update")
		return property.Property{}, err
	}
	return updated, nil
}
