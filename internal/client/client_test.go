package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/property"
)

var testPropertyID = uuid.MustParse("7b0c7a52-1f7e-4d1c-9d6e-3a4f2b1c0d9e")

func TestHTTPClient_HeaderInjection(t *testing.T) {
	var capturedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithToken("test-token-123"))

	req, _ := http.NewRequest("GET", server.URL+"/test", nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if auth := capturedHeaders.Get("Authorization"); auth != "Bearer test-token-123" {
		t.Errorf("unexpected Authorization header: %s", auth)
	}
	if sub := capturedHeaders.Get("X-Debug-Sub"); sub != "" {
		t.Errorf("unexpected X-Debug-Sub header with token configured: %s", sub)
	}
	if corr := capturedHeaders.Get("X-Correlation-ID"); corr == "" {
		t.Error("missing X-Correlation-ID header")
	}
}

func TestHTTPClient_DevMode(t *testing.T) {
	var capturedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithDebugSub("dev-manager"))

	req, _ := http.NewRequest("GET", server.URL+"/test", nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if debugSub := capturedHeaders.Get("X-Debug-Sub"); debugSub != "dev-manager" {
		t.Errorf("unexpected X-Debug-Sub header: %s", debugSub)
	}
	if auth := capturedHeaders.Get("Authorization"); auth != "" {
		t.Errorf("unexpected Authorization header in dev mode: %s", auth)
	}
}

func TestHTTPClient_RateLimitRetry(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithBackoff(time.Millisecond))

	req, _ := http.NewRequest("POST", server.URL+"/test", nil)
	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 after retry, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestHTTPClient_RateLimitExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithBackoff(time.Millisecond))

	req, _ := http.NewRequest("GET", server.URL+"/test", nil)
	_, err := client.Do(context.Background(), req)

	var rl ErrRateLimited
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestHTTPClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClient(url)
	req, _ := http.NewRequest("GET", url+"/test", nil)
	_, err := client.Do(context.Background(), req)

	var netErr ErrNetwork
	if !errors.As(err, &netErr) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !netErr.Retryable() {
		t.Error("network errors should be retryable")
	}
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewHTTPClient(server.URL)
	req, _ := http.NewRequest("GET", server.URL+"/slow", nil)
	_, err := client.Do(ctx, req)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	var netErr ErrNetwork
	if errors.As(err, &netErr) {
		t.Errorf("an abandoned request must not be reported as a network error: %v", err)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	req, _ = http.NewRequest("GET", server.URL+"/slow", nil)
	if _, err := client.Do(cancelled, req); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"nonsense", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.value); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPropertyClient_Update(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(property.Property{ID: testPropertyID, Name: "ABC Apartments"})
	}))
	defer server.Close()

	pc := NewPropertyClient(NewHTTPClient(server.URL))
	updated, err := pc.Update(context.Background(), testPropertyID, property.Patch{
		"property_name":       "ABC Apartments",
		"water_rate_per_unit": "27.00",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("expected PATCH, got %s", gotMethod)
	}
	if want := "/property/properties/" + testPropertyID.String() + "/"; gotPath != want {
		t.Errorf("expected path %s, got %s", want, gotPath)
	}
	if gotBody["water_rate_per_unit"] != "27.00" {
		t.Errorf("rate must travel as text, got %v", gotBody["water_rate_per_unit"])
	}
	if updated.Name != "ABC Apartments" {
		t.Errorf("unexpected name %q", updated.Name)
	}
}

func TestPropertyClient_UpdateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"error":"validation failed","errors":{"property_name":"too short"}}`,
			check: func(t *testing.T, err error) {
				var v ErrValidation
				if !errors.As(err, &v) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				if v.Fields["property_name"] != "too short" {
					t.Errorf("unexpected fields %v", v.Fields)
				}
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var u ErrUnauthorized
				if !errors.As(err, &u) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"error":"property not found"}`,
			check: func(t *testing.T, err error) {
				var nf ErrNotFound
				if !errors.As(err, &nf) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				if nf.ID != testPropertyID.String() {
					t.Errorf("unexpected id %s", nf.ID)
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			check: func(t *testing.T, err error) {
				var s ErrStatus
				if !errors.As(err, &s) {
					t.Fatalf("expected ErrStatus, got %v", err)
				}
				if s.Code != 500 || s.Message != "boom" {
					t.Errorf("unexpected status error %+v", s)
				}
			},
		},
		{
			name:   "non-200 success code",
			status: http.StatusAccepted,
			check: func(t *testing.T, err error) {
				var s ErrStatus
				if !errors.As(err, &s) {
					t.Fatalf("expected ErrStatus, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			pc := NewPropertyClient(NewHTTPClient(server.URL))
			_, err := pc.Update(context.Background(), testPropertyID, property.Patch{})
			tt.check(t, err)
		})
	}
}

func TestMaintenanceClient_List(t *testing.T) {
	want := []property.Maintenance{
		{ID: uuid.New(), PropertyID: testPropertyID, Description: "Repaint stairwell", Cost: "12000", Date: "2024-03-01"},
		{ID: uuid.New(), PropertyID: testPropertyID, Description: "Fix pump", Cost: "800.50", Date: "2024-02-11"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/maintenances/"+testPropertyID.String() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer server.Close()

	mc := NewMaintenanceClient(NewHTTPClient(server.URL))
	got, err := mc.List(context.Background(), testPropertyID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("maintenances mismatch (-want +got):\n%s", diff)
	}
}

func TestMaintenanceClient_Create(t *testing.T) {
	var got property.Maintenance

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		got.ID = uuid.New()
		got.UnitName = "A1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(got)
	}))
	defer server.Close()

	mc := NewMaintenanceClient(NewHTTPClient(server.URL))
	created, err := mc.Create(context.Background(), testPropertyID, property.Maintenance{
		UnitID:      uuid.New(),
		Description: "Fix pump",
		Cost:        "800",
		Date:        "2024-02-11",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.UnitName != "A1" || created.ID == uuid.Nil {
		t.Errorf("unexpected created record %+v", created)
	}
}
