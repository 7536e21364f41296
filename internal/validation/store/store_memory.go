package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"lcvet/internal/validation/models"
)

// InMemoryStore is an append-only record store for tests. Now is swappable so
// session-grouping tests can control timestamps.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Record

	Now func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{Now: time.Now}
}

func (s *InMemoryStore) Append(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Timestamp = s.Now().UTC()
	s.records = append(s.records, *record)
	return nil
}

func (s *InMemoryStore) ListByDocument(_ context.Context, documentID string) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Record
	for _, r := range s.records {
		if r.DocumentID == documentID {
			matched = append(matched, r)
		}
	}
	// Most recent first; stable so same-timestamp records keep insert order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return matched, nil
}

// Len reports the total number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
