package autofill

import (
	"sync"
	"time"
)

// Record is the cached bundle of one auto-fill interaction, reusable by
// later chat turns referencing the same template key.
type Record struct {
	IdeaDescription  string           `json:"ideaDescription"`
	StepDescription  string           `json:"stepDescription"`
	FieldHints       map[string]string `json:"fieldHints"`
	Fields           []string         `json:"fields"`
	RepeatedFields   []map[string]any `json:"repeatedFields"`
	GeneratedAnswers map[string]any   `json:"generatedAnswers"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Store holds auto-fill context records keyed by template key. Writes for a
// key overwrite the previous record wholesale and are serialized; the store
// is process-local and resets on restart.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewStore creates an empty auto-fill context store.
func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Put overwrites the record stored under key.
func (s *Store) Put(key string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record
}

// Get returns the record stored under key.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	return record, ok
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
