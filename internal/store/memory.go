package store

import (
	"errors"
	"sync"
	"time"

	"github.com/pvops/cams-pipeline/internal/pipeline"
)

var (
	// ErrNotFound is returned when no run history is available.
	ErrNotFound = errors.New("no pipeline runs recorded")
)

// MemoryStore is a concurrency-safe in-memory history of pipeline runs,
// newest last, with optional retention limits.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []pipeline.RunReport

	// retention configuration
	maxHistory int           // max number of reports kept
	maxAge     time.Duration // optional max age of reports
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a finished run report and enforces retention.
func (s *MemoryStore) Save(report pipeline.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, report)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = s.runs[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		// i == len(s.runs) means every report is stale; trim them all.
		if i > 0 {
			s.runs = s.runs[i:]
		}
	}
}

// Latest returns the most recent run report.
func (s *MemoryStore) Latest() (pipeline.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return pipeline.RunReport{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// Recent returns up to limit run reports, newest first.
func (s *MemoryStore) Recent(limit int) ([]pipeline.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return nil, ErrNotFound
	}

	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}

	result := make([]pipeline.RunReport, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.runs[i])
	}
	return result, nil
}
