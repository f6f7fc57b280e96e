// Package editsession implements the dialog shell around an edit form.
//
// A Session is Closed until Open seeds it from a record. Submit validates
// the draft, hands it to an action, and on success notifies, refreshes the
// caller's view once and closes. Failures leave the session open.
package editsession

import (
	"context"
	"errors"
	"sync"

	"github.com/lpms-app/lpms/internal/client"
	"github.com/lpms-app/lpms/internal/editform"
	"github.com/lpms-app/lpms/internal/validation"
	"github.com/rs/zerolog/log"
)

// State is the visibility of the edit surface
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

var (
	// ErrClosed is returned for edits or submits on a closed session
	ErrClosed = errors.New("edit session is closed")

	// ErrSubmitInFlight is returned when a submit is already outstanding
	ErrSubmitInFlight = errors.New("submit already in progress")
)

// Notifier shows transient user-facing messages
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Refresher re-reads the caller's authoritative view
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Action performs the remote write for a validated draft and returns the
// confirmation text to show
type Action[R, D any] func(ctx context.Context, record R, draft D) (string, error)

// Session is the Closed/Open shell around one form
type Session[R, D any] struct {
	name      string
	newForm   func() *editform.Form[D]
	seed      func(R) D
	action    Action[R, D]
	notifier  Notifier
	refresher Refresher

	mu         sync.Mutex
	state      State
	record     R
	form       *editform.Form[D]
	submitting bool
}

// Config wires a Session
type Config[R, D any] struct {
	Name      string
	NewForm   func() *editform.Form[D]
	Seed      func(R) D
	Action    Action[R, D]
	Notifier  Notifier
	Refresher Refresher
}

// New builds a closed session
func New[R, D any](cfg Config[R, D]) *Session[R, D] {
	return &Session[R, D]{
		name:      cfg.Name,
		newForm:   cfg.NewForm,
		seed:      cfg.Seed,
		action:    cfg.Action,
		notifier:  cfg.Notifier,
		refresher: cfg.Refresher,
	}
}

// State reports whether the session is open
func (s *Session[R, D]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open shows the edit surface with a draft seeded from record. Opening an
// already open session re-seeds it.
func (s *Session[R, D]) Open(record R) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = record
	s.form = s.newForm()
	s.form.Initialize(s.seed(record))
	s.state = Open
}

// Cancel closes the session and discards the draft
func (s *Session[R, D]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close()
}

func (s *Session[R, D]) close() {
	s.state = Closed
	s.form = nil
	var zero R
	s.record = zero
}

// SetField forwards user input to the form
func (s *Session[R, D]) SetField(name, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		return ErrClosed
	}
	return s.form.SetField(name, raw)
}

// Draft returns the current draft
func (s *Session[R, D]) Draft() (D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		var zero D
		return zero, false
	}
	return s.form.Draft(), true
}

// Errors returns the field error set of the open form
func (s *Session[R, D]) Errors() validation.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Open {
		return nil
	}
	return s.form.Errors()
}

// Submit validates and, when valid, runs the action. Validation failures
// return validation.Errors without contacting the remote store.
func (s *Session[R, D]) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Open {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}

	draft, err := s.form.Submit()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	record := s.record
	form := s.form
	s.submitting = true
	s.mu.Unlock()

	logger := log.With().Str("session", s.name).Logger()

	msg, err := s.action(ctx, record, draft)

	s.mu.Lock()
	s.submitting = false
	current := s.form == form

	if err != nil {
		var verr client.ErrValidation
		if errors.As(err, &verr) && current {
			form.SetServerErrors(verr.Fields)
		}
		s.mu.Unlock()

		logger.Error().Err(err).Msg("submit failed")
		if s.notifier != nil {
			s.notifier.Error(describe(err))
		}
		return err
	}

	// a session re-opened while the request was in flight stays open
	if current {
		s.close()
	}
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Success(msg)
	}
	if s.refresher != nil {
		if rerr := s.refresher.Refresh(ctx); rerr != nil {
			logger.Warn().Err(rerr).Msg("refresh after submit failed")
		}
	}
	return nil
}

// describe renders a submit failure for the user
func describe(err error) string {
	var (
		verr  client.ErrValidation
		uerr  client.ErrUnauthorized
		nerr  client.ErrNetwork
		nferr client.ErrNotFound
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Saving was interrupted before the server answered."
	case errors.As(err, &verr):
		return "The server rejected some fields. Please review and try again."
	case errors.As(err, &uerr):
		return "Your session has expired. Please sign in again."
	case errors.As(err, &nerr):
		return "Could not reach the server. Check your connection and retry."
	case errors.As(err, &nferr):
		return "This record no longer exists."
	default:
		return "Something went wrong while saving: " + err.Error()
	}
}
