package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves one property with one unit
type fakeAPI struct {
	mu      sync.Mutex
	prop    property.Property
	records []property.Maintenance
	patches []map[string]any
}

func newFakeAPI() *fakeAPI {
	id := uuid.New()
	floors := 2
	return &fakeAPI{prop: property.Property{
		ID:               id,
		Name:             "Sunrise Apts",
		LRL:              "LR-001",
		NumberOfUnits:    1,
		NumberOfFloors:   &floors,
		WaterRatePerUnit: "25.00",
		Units:            []property.Unit{{ID: uuid.New(), PropertyID: id, Name: "A1"}},
	}}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/property/properties" && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode([]property.Property{f.prop})
	case path == "/property/properties/"+f.prop.ID.String() && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(f.prop)
	case path == "/property/properties/"+f.prop.ID.String() && r.Method == http.MethodPatch:
		var patch map[string]any
		json.NewDecoder(r.Body).Decode(&patch)
		f.patches = append(f.patches, patch)
		if name, ok := patch["property_name"].(string); ok {
			f.prop.Name = name
		}
		json.NewEncoder(w).Encode(f.prop)
	case path == "/api/maintenances/"+f.prop.ID.String() && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(f.records)
	case path == "/api/maintenances/"+f.prop.ID.String() && r.Method == http.MethodPost:
		var m property.Maintenance
		json.NewDecoder(r.Body).Decode(&m)
		m.ID = uuid.New()
		m.UnitName = "A1"
		f.records = append([]property.Maintenance{m}, f.records...)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(m)
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}
}

func (f *fakeAPI) sentPatches() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.patches...)
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LPMS_API_BASE_URL", "")
	t.Setenv("LPMS_TOKEN", "")

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("theme: dark\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgFile, "--api", srv.URL, "--dev-sub", "manager-1"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPropertiesCommand(t *testing.T) {
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv, "properties")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunrise Apts")
	assert.Contains(t, out, "MAINTENANCES")
}

func TestPropertyEditCommand(t *testing.T) {
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv, "property", "edit", fake.prop.ID.String(), "--name", "Sunrise Towers")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunrise Apts details updated")

	patches := fake.sentPatches()
	require.Len(t, patches, 1)
	assert.Equal(t, "Sunrise Towers", patches[0]["property_name"])
	assert.Equal(t, "LR-001", patches[0]["property_lrl"])
}

func TestPropertyEditCommand_InvalidInput(t *testing.T) {
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv, "property", "edit", fake.prop.ID.String(), "--name", "AB", "--water-rate", "27.")
	require.Error(t, err)
	assert.Contains(t, out, "property_name: String must contain at least 3 character(s)")
	assert.Contains(t, out, "water_rate_per_unit: Invalid decimal format for water_rate_per_unit")
	assert.Empty(t, fake.sentPatches())
}

func TestMaintenanceAddAndList(t *testing.T) {
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv, "maintenance", "add", fake.prop.ID.String(),
		"--description", "Fix pump", "--cost", "800.50", "--date", "2024-02-11")
	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance added for A1")
	assert.Contains(t, out, "Fix pump")

	// no id: redirects to the first property
	out, err = run(t, srv, "maintenances")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunrise Apts")
	assert.Contains(t, out, "800.50")
}

func TestLinksCommand(t *testing.T) {
	srv := httptest.NewServer(newFakeAPI())
	defer srv.Close()

	out, err := run(t, srv, "links")
	require.NoError(t, err)
	assert.Contains(t, out, "header: bg-none")
	assert.Contains(t, out, "pricing")
	assert.NotContains(t, out, "[menu]")

	out, err = run(t, srv, "links", "--mobile", "--scrolled")
	require.NoError(t, err)
	assert.Contains(t, out, "header: bg-black")
	assert.Contains(t, out, "[menu]")
	assert.Contains(t, out, "  contact")
}
