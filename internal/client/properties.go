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

// PropertyClient talks to the property endpoints
// Reference: internal/httpapi/properties.go (server-side)
type PropertyClient struct {
	http *HTTPClient
}

// NewPropertyClient creates a property client on top of an HTTPClient
func NewPropertyClient(httpClient *HTTPClient) *PropertyClient {
	return &PropertyClient{http: httpClient}
}

func (c *PropertyClient) url(id string) string {
	if id == "" {
		return c.http.baseURL + "/property/properties/"
	}
	return fmt.Sprintf("%s/property/properties/%s/", c.http.baseURL, id)
}

// List fetches all properties of the authenticated manager
func (c *PropertyClient) List(ctx context.Context) ([]property.Property, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(""), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp, "property", "")
	}

	var props []property.Property
	if err := json.NewDecoder(resp.Body).Decode(&props); err != nil {
		return nil, fmt.Errorf("failed to decode property list: %w", err)
	}
	return props, nil
}

// Get retrieves a single property
func (c *PropertyClient) Get(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(id.String()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp, "property", id.String())
	}

	var p property.Property
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode property: %w", err)
	}
	return &p, nil
}

// Create registers a new property
func (c *PropertyClient) Create(ctx context.Context, p property.Property) (*property.Property, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal property: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(""), bytes.NewReader(body))
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
		return nil, responseError(resp, "property", "")
	}

	var created property.Property
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created property: %w", err)
	}
	return &created, nil
}

// Update sends a partial update. Only a 200 counts as success; every other
// outcome maps onto the package's error types.
func (c *PropertyClient) Update(ctx context.Context, id uuid.UUID, patch property.Patch) (*property.Property, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.url(id.String()), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp, "property", id.String())
	}

	var updated property.Property
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated property: %w", err)
	}
	return &updated, nil
}
