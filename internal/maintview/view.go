// Package maintview keeps the maintenance list of the currently selected
// property.
//
// Each selection starts a fetch tagged with the property ID and a
// generation number. A response is applied only if its tag still matches
// the current selection, so a slow response for an earlier property can
// never overwrite the rows of a newer one.
package maintview

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/rs/zerolog/log"
)

// Fetcher loads the maintenance records of a property
type Fetcher interface {
	List(ctx context.Context, propertyID uuid.UUID) ([]property.Maintenance, error)
}

// Snapshot is what the view currently shows
type Snapshot struct {
	PropertyID uuid.UUID
	Rows       []property.Maintenance
	Loading    bool
	Err        error
}

// View is the maintenance table of one selected property
type View struct {
	fetcher Fetcher

	mu       sync.Mutex
	selected uuid.UUID
	gen      uint64
	rows     []property.Maintenance
	loading  bool
	err      error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New returns an empty view
func New(fetcher Fetcher) *View {
	return &View{fetcher: fetcher}
}

// Select makes id the current property and starts loading its records.
// The previous in-flight fetch, if any, is cancelled. Selecting uuid.Nil
// clears the view without fetching.
func (v *View) Select(ctx context.Context, id uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}

	v.gen++
	v.selected = id
	v.rows = nil
	v.err = nil
	v.loading = false

	if id == uuid.Nil {
		return
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.loading = true

	gen := v.gen
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		defer cancel()
		rows, err := v.fetcher.List(fetchCtx, id)
		v.apply(id, gen, rows, err)
	}()
}

// Refresh re-fetches the current selection
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	id := v.selected
	v.mu.Unlock()

	v.Select(ctx, id)
	return nil
}

func (v *View) apply(id uuid.UUID, gen uint64, rows []property.Maintenance, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.gen || id != v.selected {
		log.Debug().
			Str("propertyId", id.String()).
			Str("selected", v.selected.String()).
			Msg("discarding stale maintenance response")
		return
	}

	v.loading = false
	v.cancel = nil
	if err != nil {
		// the current fetch can still be cancelled from the caller's context
		if errors.Is(err, context.Canceled) {
			log.Debug().Str("propertyId", id.String()).Msg("maintenance load interrupted")
		} else {
			log.Error().Err(err).Str("propertyId", id.String()).Msg("failed to load maintenances")
		}
		v.err = err
		return
	}
	v.rows = rows
}

// Snapshot returns a copy of the current state
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	rows := make([]property.Maintenance, len(v.rows))
	copy(rows, v.rows)
	return Snapshot{
		PropertyID: v.selected,
		Rows:       rows,
		Loading:    v.loading,
		Err:        v.err,
	}
}

// Wait blocks until every started fetch has returned
func (v *View) Wait() {
	v.wg.Wait()
}

// Close cancels the outstanding fetch and waits for it
func (v *View) Close() {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.mu.Unlock()
	v.wg.Wait()
}
