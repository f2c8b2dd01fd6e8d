package core

// store.go keeps loaded datasets in memory between requests.
//
// Each browser interaction re-runs the pipeline against the source table of
// the file the user uploaded. The store only remembers that source; it is
// bounded, expires idle entries and is lost on restart.

import (
	"container/list"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDatasetNotFound is returned for unknown or expired dataset IDs.
var ErrDatasetNotFound = errors.New("dataset not found or expired")

// Dataset is one loaded upload.
type Dataset struct {
	ID          uuid.UUID
	FileName    string
	Fingerprint string
	Size        int
	Source      *Table
	LoadedAt    time.Time

	// Origin is the submitter recorded by ContextWithOrigin.
	Origin string

	lastAccess time.Time
}

// Encoding is the encoding the upload was decoded with.
func (d *Dataset) Encoding() string {
	return d.Source.Encoding
}

// Store is a bounded, expiring in-memory dataset registry. It is safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	entries map[uuid.UUID]*list.Element
	order   *list.List // front = most recently used
}

// NewStore creates a store. ttl <= 0 disables expiry; max <= 0 disables
// the size bound.
func NewStore(ttl time.Duration, max int) *Store {
	return &Store{
		ttl:     ttl,
		max:     max,
		now:     time.Now,
		entries: make(map[uuid.UUID]*list.Element),
		order:   list.New(),
	}
}

// Put registers a copy of ds under a new ID and evicts the least recently
// used entries beyond the bound. ID and LoadedAt are assigned by the store.
func (s *Store) Put(ds Dataset) *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ds.ID = uuid.New()
	ds.LoadedAt = now
	ds.lastAccess = now
	s.entries[ds.ID] = s.order.PushFront(&ds)

	for s.max > 0 && s.order.Len() > s.max {
		s.removeElement(s.order.Back())
	}
	return &ds
}

// Get returns a live dataset and marks it as used.
func (s *Store) Get(id uuid.UUID) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[id]
	if !ok {
		return nil, ErrDatasetNotFound
	}
	ds := el.Value.(*Dataset)
	now := s.now()
	if s.expired(ds, now) {
		s.removeElement(el)
		return nil, ErrDatasetNotFound
	}
	ds.lastAccess = now
	s.order.MoveToFront(el)
	return ds, nil
}

// LookupFingerprint returns the source table of a live dataset loaded from
// identical bytes, so a repeated upload skips parsing.
func (s *Store) LookupFingerprint(fingerprint string) (*Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for el := s.order.Front(); el != nil; el = el.Next() {
		ds := el.Value.(*Dataset)
		if ds.Fingerprint == fingerprint && !s.expired(ds, now) {
			return ds.Source, true
		}
	}
	return nil, false
}

// Delete drops a dataset. It reports whether the ID was known.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[id]
	if !ok {
		return false
	}
	s.removeElement(el)
	return true
}

// Sweep drops every dataset idle longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if s.expired(el.Value.(*Dataset), now) {
			s.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of stored datasets, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *Store) expired(ds *Dataset, now time.Time) bool {
	return s.ttl > 0 && now.Sub(ds.lastAccess) > s.ttl
}

func (s *Store) removeElement(el *list.Element) {
	ds := s.order.Remove(el).(*Dataset)
	delete(s.entries, ds.ID)
}
