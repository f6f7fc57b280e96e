package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/property"
)

// MaintenanceClient talks to the maintenance endpoints of a property
type MaintenanceClient struct {
	http *HTTPClient
}

// NewMaintenanceClient creates a maintenance client on top of an HTTPClient
func NewMaintenanceClient(httpClient *HTTPClient) *MaintenanceClient {
	return &MaintenanceClient{http: httpClient}
}

func (c *MaintenanceClient) url(propertyID uuid.UUID) string {
	return fmt.Sprintf("%s/api/maintenances/%s", c.http.baseURL, propertyID)
}

// List returns the maintenance records of a property in server order
func (c *MaintenanceClient) List(ctx context.Context, propertyID uuid.UUID) ([]property.Maintenance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(propertyID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp, "property", propertyID.String())
	}

	var items []property.Maintenance
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode maintenances: %w", err)
	}
	return items, nil
}

// Create logs a maintenance record against a unit of the property
func (c *MaintenanceClient) Create(ctx context.Context, propertyID uuid.UUID, m property.Maintenance) (*property.Maintenance, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal maintenance: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(propertyID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, responseError(resp, "property", propertyID.String())
	}

	var created property.Maintenance
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance: %w", err)
	}
	return &created, nil
}
