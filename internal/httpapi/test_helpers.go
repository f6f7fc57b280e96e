package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/auth"
	"github.com/lpms-app/lpms/internal/events"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/lpms-app/lpms/internal/service/propertyservice"
)

// memStore is an in-memory PropertyStore and MaintenanceStore
type memStore struct {
	mu           sync.Mutex
	owners       map[uuid.UUID]string
	properties   map[uuid.UUID]property.Property
	maintenances []property.Maintenance
	updates      int
}

func newMemStore() *memStore {
	return &memStore{
		owners:     map[uuid.UUID]string{},
		properties: map[uuid.UUID]property.Property{},
	}
}

// seed stores a property with one unit for the owner and returns it
func (m *memStore) seed(ownerID, name string) property.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	floors := 3
	p := property.Property{
		ID:               uuid.New(),
		Name:             name,
		LRL:              "LR-100",
		NumberOfUnits:    1,
		NumberOfFloors:   &floors,
		WaterRatePerUnit: "25.00",
		UpdatedAt:        "2024-01-01T00:00:00Z",
	}
	p.Units = []property.Unit{{ID: uuid.New(), PropertyID: p.ID, Name: "A1", Floor: 1}}
	m.owners[p.ID] = ownerID
	m.properties[p.ID] = p
	return p
}

func (m *memStore) ListProperties(ctx context.Context, ownerID string) ([]property.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []property.Property{}
	for id, p := range m.properties {
		if m.owners[id] == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) GetProperty(ctx context.Context, ownerID string, id uuid.UUID) (property.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[id]
	if !ok || m.owners[id] != ownerID {
		return property.Property{}, propertyservice.ErrNotFound
	}
	return p, nil
}

func (m *memStore) CreateProperty(ctx context.Context, ownerID string, p property.Property) (property.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	for i := range p.Units {
		p.Units[i].ID = uuid.New()
		p.Units[i].PropertyID = p.ID
	}
	m.owners[p.ID] = ownerID
	m.properties[p.ID] = p
	return p, nil
}

func (m *memStore) UpdateProperty(ctx context.Context, ownerID string, id uuid.UUID, mutate propertyservice.Mutator) (property.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.properties[id]
	if !ok || m.owners[id] != ownerID {
		return property.Property{}, propertyservice.ErrNotFound
	}
	next, err := mutate(existing)
	if err != nil {
		return property.Property{}, err
	}
	next.UpdatedAt = "2024-06-01T00:00:00Z"
	m.properties[id] = next
	m.updates++
	return next, nil
}

func (m *memStore) ListMaintenances(ctx context.Context, ownerID string, propertyID uuid.UUID) ([]property.Maintenance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.properties[propertyID]; !ok || m.owners[propertyID] != ownerID {
		return nil, propertyservice.ErrNotFound
	}
	out := []property.Maintenance{}
	for _, rec := range m.maintenances {
		if rec.PropertyID == propertyID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memStore) CreateMaintenance(ctx context.Context, ownerID string, rec property.Maintenance) (property.Maintenance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[rec.PropertyID]
	if !ok || m.owners[rec.PropertyID] != ownerID {
		return property.Maintenance{}, propertyservice.ErrNotFound
	}
	unit, ok := p.FindUnit(rec.UnitID)
	if !ok {
		return property.Maintenance{}, propertyservice.ErrUnknownUnit
	}
	rec.ID = uuid.New()
	rec.UnitName = unit.Name
	m.maintenances = append(m.maintenances, rec)
	return rec, nil
}

// recordingPublisher keeps every published envelope
type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.Envelope
}

func (p *recordingPublisher) Publish(ctx context.Context, msg events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, e := range p.sent {
		out[i] = e.Meta.Type
	}
	return out
}

// ownerResolver maps every subject to "owner-<sub>"
type ownerResolver struct{}

func (ownerResolver) ResolveUser(ctx context.Context, sub string) (string, error) {
	return "owner-" + sub, nil
}

type testEnv struct {
	store  *memStore
	events *recordingPublisher
	router http.Handler
}

func newTestEnv(t *testing.T, rl RateLimitInfo) *testEnv {
	t.Helper()
	store := newMemStore()
	pub := &recordingPublisher{}
	srv := &Server{
		Properties:      store,
		Maintenances:    store,
		Events:          pub,
		RateLimitConfig: rl,
	}
	return &testEnv{
		store:  store,
		events: pub,
		router: srv.Routes(auth.JWTCfg{HS256Secret: "test-secret", DevMode: true}, ownerResolver{}),
	}
}

// makeRequest sends a request as the given subject; an empty sub sends no credentials
func makeRequest(t *testing.T, router http.Handler, method, path string, body any, sub string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sub != "" {
		req.Header.Set("X-Debug-Sub", sub)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v (body: %s)", err, w.Body.String())
	}
	return v
}
