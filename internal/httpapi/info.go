package httpapi

import (
	"net/http"
	"time"
)

// ServerInfo represents the server's capabilities and configuration
type ServerInfo struct {
	APIVersion string         `json:"apiVersion"`
	ServerTime string         `json:"serverTime"`
	Resources  []string       `json:"resources"`
	RateLimit  *RateLimitInfo `json:"rateLimit,omitempty"`
}

// RateLimitInfo describes the server's rate limiting policy. Reads and
// writes are budgeted separately per manager.
type RateLimitInfo struct {
	WindowSeconds int         `json:"windowSeconds"` // e.g. 60
	MaxRequests   int         `json:"maxRequests"`   // reads per window
	Burst         int         `json:"burst"`         // read bucket size
	Writes        *WriteLimit `json:"writes,omitempty"`
}

// WriteLimit is the budget for edits and new records. Absent, writes use
// the read budget.
type WriteLimit struct {
	MaxRequests int `json:"maxRequests"`
	Burst       int `json:"burst"`
}

// Enabled reports whether the policy limits anything
func (r RateLimitInfo) Enabled() bool {
	if r.WindowSeconds <= 0 || r.MaxRequests <= 0 || r.Burst <= 0 {
		return false
	}
	w := r.writePolicy()
	return w.MaxRequests > 0 && w.Burst > 0
}

func (r RateLimitInfo) writePolicy() WriteLimit {
	if r.Writes == nil {
		return WriteLimit{MaxRequests: r.MaxRequests, Burst: r.Burst}
	}
	return *r.Writes
}

// DefaultRateLimit is applied when the server is not configured otherwise
var DefaultRateLimit = RateLimitInfo{
	WindowSeconds: 60,
	MaxRequests:   600,
	Burst:         120,
	Writes:        &WriteLimit{MaxRequests: 60, Burst: 10},
}

// Info handles GET /info
// Can be called without authentication to allow capability discovery
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	info := ServerInfo{
		APIVersion: "1.0",
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
		Resources:  []string{"properties", "maintenances"},
	}
	if s.RateLimitConfig.Enabled() {
		rl := s.RateLimitConfig
		w := rl.writePolicy()
		rl.Writes = &w
		info.RateLimit = &rl
	}
	writeJSON(w, http.StatusOK, info)
}
