package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/crop-yield-prediction/internal/yield"
)

var (
	// ErrNotFound is returned when no probe results are available for a provider.
	ErrNotFound = errors.New("no probe results for provider")
)

// ProbeHistory holds a time-ordered list of probe results for a provider.
type ProbeHistory struct {
	Results []yield.ProbeResult
}

// MemoryStore is a concurrency-safe in-memory implementation of yield.StatusStore.
type MemoryStore struct {
	mu sync.RWMutex

	// key: provider name, value: history
	data map[string]*ProbeHistory

	// retention configuration
	maxHistory int           // max number of results per provider
	maxAge     time.Duration // optional max age for results
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ProbeHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveProbe appends a result for its provider and enforces retention.
func (s *MemoryStore) SaveProbe(result yield.ProbeResult) {
	key := result.Provider

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &ProbeHistory{}
		s.data[key] = history
	}

	history.Results = append(history.Results, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Results) > s.maxHistory {
		over := len(history.Results) - s.maxHistory
		history.Results = history.Results[over:]
	}

	// Enforce retention by age. The newest result is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results)-1; i++ {
			if !history.Results[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Results = history.Results[i:]
	}
}

// GetLatest returns the most recent result for a provider.
func (s *MemoryStore) GetLatest(provider string) (yield.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[provider]
	if !ok || len(history.Results) == 0 {
		return yield.ProbeResult{}, ErrNotFound
	}
	return history.Results[len(history.Results)-1], nil
}

// GetRange returns all results for a provider between from and to (inclusive).
func (s *MemoryStore) GetRange(provider string, from, to time.Time) ([]yield.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[provider]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}

	var result []yield.ProbeResult
	for _, r := range history.Results {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Providers lists every provider with stored results, sorted by name.
func (s *MemoryStore) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name, h := range s.data {
		if len(h.Results) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
