// Package nav provides the navigation capability handed to views that need
// to change location: a path router, a one-shot redirect, and the landing
// page menu state.
package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrNoRoute is returned when no registered pattern matches a path
var ErrNoRoute = errors.New("no route")

// Navigator changes the current location
type Navigator interface {
	Push(ctx context.Context, path string) error
}

// Handler renders the view for a matched route
type Handler func(ctx context.Context, params map[string]string) error

type route struct {
	pattern  string
	segments []string
	handler  Handler
}

// Router dispatches paths to handlers. Patterns use {name} segments,
// e.g. /home/managers/maintenances/{id}.
type Router struct {
	mu      sync.RWMutex
	routes  []route
	history []string
}

// NewRouter returns an empty router
func NewRouter() *Router {
	return &Router{}
}

// Handle registers a handler for a pattern
func (r *Router) Handle(pattern string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: split(pattern),
		handler:  h,
	})
}

// Push records path in the history and runs the first matching handler
func (r *Router) Push(ctx context.Context, path string) error {
	r.mu.Lock()
	r.history = append(r.history, path)
	routes := r.routes
	r.mu.Unlock()

	parts := split(path)
	for _, rt := range routes {
		if params, ok := match(rt.segments, parts); ok {
			log.Debug().Str("path", path).Str("route", rt.pattern).Msg("navigating")
			return rt.handler(ctx, params)
		}
	}
	return fmt.Errorf("%w: %s", ErrNoRoute, path)
}

// History returns every path pushed so far
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func match(pattern, parts []string) (map[string]string, bool) {
	if len(pattern) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if parts[i] == "" {
				return nil, false
			}
			params[seg[1:len(seg)-1]] = parts[i]
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// Route patterns of the manager dashboard
const (
	MaintenancesRoute = "/home/managers/maintenances/{id}"
	PropertiesRoute   = "/home/managers/properties"
)

// MaintenancesPath is the maintenance page of a property
func MaintenancesPath(propertyID string) string {
	return "/home/managers/maintenances/" + propertyID
}

// Redirect sends the navigator to a path derived from an identifier as
// soon as the identifier is known. Each distinct identifier redirects once.
type Redirect struct {
	nav  Navigator
	path func(id string) string

	mu   sync.Mutex
	last string
}

// NewRedirect builds a redirect with an injected navigator
func NewRedirect(nav Navigator, path func(id string) string) *Redirect {
	return &Redirect{nav: nav, path: path}
}

// Set reports the current identifier. Empty identifiers and repeats of the
// last one do nothing.
func (r *Redirect) Set(ctx context.Context, id string) error {
	r.mu.Lock()
	if id == "" || id == r.last {
		r.mu.Unlock()
		return nil
	}
	r.last = id
	r.mu.Unlock()

	return r.nav.Push(ctx, r.path(id))
}
