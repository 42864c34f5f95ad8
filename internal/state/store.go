// Package state owns the client-known truth between polls: the job
// store, the folder tree and the view state. All mutation goes through
// App so the three stay mutually consistent.
package state

import (
	"sync"

	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

// Store is the in-memory table of recordings keyed by path. Exactly one
// Recording exists per path; paths are server-assigned, never invented
// by the client.
type Store struct {
	mu         sync.RWMutex
	recordings map[string]*models.Recording
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{
		recordings: make(map[string]*models.Recording),
	}
}

// Get returns a copy of the recording at path.
func (s *Store) Get(path string) (models.Recording, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recordings[path]
	if !ok {
		return models.Recording{}, false
	}
	return *rec, true
}

// UpsertListing merges one directory-listing row into the store. Listing
// rows carry no transcription, so an existing transcription survives
// until the next detail fetch says otherwise.
func (s *Store) UpsertListing(entry models.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[entry.Path]
	if !ok {
		rec = &models.Recording{Path: entry.Path}
		s.recordings[entry.Path] = rec
	}
	rec.FileName = entry.FileName
	rec.Duration = entry.Duration
	rec.DateCreated = entry.DateCreated
	rec.Status = entry.Status
}

// UpsertDetail replaces the stored recording with a full detail fetch.
// Detail responses carry no duration, so a duration learned from a
// listing survives the replacement.
func (s *Store) UpsertDetail(rec models.Recording) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.recordings[rec.Path]; ok && rec.Duration == "" {
		rec.Duration = prev.Duration
	}
	s.recordings[rec.Path] = &rec
}

// Remove deletes the recording at path, if present.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recordings, path)
}

// Len returns the number of known recordings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recordings)
}
