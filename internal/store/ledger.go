package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"
)

// errNoChange is returned by an update function when nothing needs to be written
var errNoChange = errors.New("no change")

// UpdateFunc computes the next value for a key from its current value.
// It must not modify cur in place. Returning keep=false deletes the key.
type UpdateFunc[V any] func(cur V, ok bool) (next V, keep bool, err error)

// Ledger is the in-memory authoritative state of one store: a map from user id to that
// user's collection, persisted as a whole through a Snapshotter.
//
// Writers are serialized by writeMu. Each write builds a new map, persists it and only then
// swaps it in under mu, so readers never wait on I/O and never see an undurable write.
// Published maps are never modified.
type Ledger[V any] struct {
	name    string
	snap    Snapshotter
	writeMu sync.Mutex
	mu      sync.RWMutex
	entries map[string]V
}

// OpenLedger loads the last snapshot from snap
func OpenLedger[V any](ctx context.Context, name string, snap Snapshotter) (*Ledger[V], error) {
	data, err := snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", name, err)
	}

	entries := make(map[string]V)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode %s snapshot: %w", name, err)
		}
	}

	return &Ledger[V]{
		name:    name,
		snap:    snap,
		entries: entries,
	}, nil
}

// Get returns the current value for key
func (l *Ledger[V]) Get(key string) (V, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.entries[key]
	return v, ok
}

// Len returns the number of keys
func (l *Ledger[V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Range calls fn for each entry of the current state until fn returns false
func (l *Ledger[V]) Range(fn func(key string, v V) bool) {
	l.mu.RLock()
	entries := l.entries
	l.mu.RUnlock()

	for k, v := range entries {
		if !fn(k, v) {
			return
		}
	}
}

// Update applies fn to key and persists the result before making it visible.
// On a persistence error nothing changes and the error wraps models.ErrPersistence.
func (l *Ledger[V]) Update(ctx context.Context, key string, fn UpdateFunc[V]) (V, error) {
	var zero V

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	cur, ok := l.entries[key]
	next, keep, err := fn(cur, ok)
	if errors.Is(err, errNoChange) {
		return cur, nil
	}
	if err != nil {
		return zero, err
	}

	entries := make(map[string]V, len(l.entries)+1)
	for k, v := range l.entries {
		entries[k] = v
	}
	if keep {
		entries[key] = next
	} else {
		delete(entries, key)
	}

	if err := l.persist(ctx, entries); err != nil {
		return zero, err
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()

	if !keep {
		return zero, nil
	}
	return next, nil
}

// Flush writes the current state again
func (l *Ledger[V]) Flush(ctx context.Context) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.persist(ctx, l.entries)
}

// Close flushes the state and closes the backend
func (l *Ledger[V]) Close(ctx context.Context) error {
	flushErr := l.Flush(ctx)
	closeErr := l.snap.Close()
	return errors.Join(flushErr, closeErr)
}

func (l *Ledger[V]) persist(ctx context.Context, entries map[string]V) error {
	start := time.Now()
	defer func() {
		util.StorePersistLatency.WithLabelValues(l.name).Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(entries)
	if err != nil {
		util.StorePersistFailures.WithLabelValues(l.name).Inc()
		return fmt.Errorf("%w: failed to encode %s snapshot: %v", models.ErrPersistence, l.name, err)
	}

	if err := l.snap.Save(ctx, data); err != nil {
		util.StorePersistFailures.WithLabelValues(l.name).Inc()
		return fmt.Errorf("%w: %s: %v", models.ErrPersistence, l.name, err)
	}
	return nil
}
