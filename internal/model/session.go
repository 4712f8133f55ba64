package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session carries per-user interaction counters. It replaces process-wide
// globals and is passed explicitly into every pipeline run. A Session may be
// shared by the cron and bot goroutines, so the counters sit behind a mutex.
type Session struct {
	ID        string
	StartedAt time.Time

	mu          sync.Mutex
	count       int
	lastUpdated time.Time
	elapsed     time.Duration
}

// NewSession starts a session at now.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		StartedAt:   now,
		lastUpdated: now,
	}
}

// Touch records one interaction.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.elapsed = now.Sub(s.lastUpdated)
	s.lastUpdated = now
}

// Count returns the number of recorded interactions.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// LastUpdated returns the time of the latest interaction.
func (s *Session) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}

// Elapsed returns the gap between the last two interactions.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}
