package propertyservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/rs/zerolog/log"
)

// MaintenanceService stores maintenance records for the manager's properties
type MaintenanceService struct {
	DB *pgxpool.Pool
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(db *pgxpool.Pool) *MaintenanceService {
	return &MaintenanceService{DB: db}
}

// ListMaintenances returns a property's records, newest maintenance date first
func (s *MaintenanceService) ListMaintenances(ctx context.Context, ownerID string, propertyID uuid.UUID) ([]property.Maintenance, error) {
	logger := log.With().Str("property_id", propertyID.String()).Logger()

	if err := s.checkOwner(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT m.id, m.property_id, m.unit_id, u.unit_name, m.description,
			m.cost, m.maintenance_date::text, m.created_at
		FROM maintenance m
		JOIN unit u ON u.id = m.unit_id
		WHERE m.property_id = $1
		ORDER BY m.maintenance_date DESC, m.created_at DESC`, propertyID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list maintenances")
		return nil, err
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (property.Maintenance, error) {
		var m property.Maintenance
		var createdAt time.Time
		err := row.Scan(&m.ID, &m.PropertyID, &m.UnitID, &m.UnitName, &m.Description,
			&m.Cost, &m.Date, &createdAt)
		m.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		return m, err
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to scan maintenance rows")
		return nil, err
	}
	return out, nil
}

// CreateMaintenance records work on a unit of the manager's property
func (s *MaintenanceService) CreateMaintenance(ctx context.Context, ownerID string, m property.Maintenance) (property.Maintenance, error) {
	logger := log.With().Str("property_id", m.PropertyID.String()).Logger()

	if err := s.checkOwner(ctx, ownerID, m.PropertyID); err != nil {
		return property.Maintenance{}, err
	}

	var createdAt time.Time
	err := s.DB.QueryRow(ctx, `
		WITH target AS (
			SELECT id, unit_name FROM unit WHERE id = $2 AND property_id = $1
		), ins AS (
			INSERT INTO maintenance (property_id, unit_id, description, cost, maintenance_date)
			SELECT $1, target.id, $3, $4, $5::date FROM target
			RETURNING id, cost, maintenance_date::text, created_at
		)
		SELECT ins.id, target.unit_name, ins.cost, ins.maintenance_date, ins.created_at
		FROM ins, target`,
		m.PropertyID, m.UnitID, m.Description, m.Cost, m.Date).
		Scan(&m.ID, &m.UnitName, &m.Cost, &m.Date, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return property.Maintenance{}, ErrUnknownUnit
		}
		logger.Error().Err(err).Msg("failed to insert maintenance")
		return property.Maintenance{}, err
	}
	m.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return m, nil
}

func (s *MaintenanceService) checkOwner(ctx context.Context, ownerID string, propertyID uuid.UUID) error {
	var exists bool
	if err := s.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM property WHERE owner_id = $1 AND id = $2)`,
		ownerID, propertyID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
