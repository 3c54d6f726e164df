// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audlab/pipeline"
)

type session struct {
	track     *pipeline.Track
	expiresAt time.Time
}

// Sessions holds uploaded tracks by id. An entry expires ttl after its last
// use.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	sessions map[string]*session
	mu       sync.Mutex
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create stores track and returns its new id.
func (s *Sessions) Create(track *pipeline.Track) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &session{track: track, expiresAt: s.now().Add(s.ttl)}
	return id
}

// Get returns the track for id and extends its lifetime.
func (s *Sessions) Get(id string) (*pipeline.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.After(sess.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess.track, true
}

func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
