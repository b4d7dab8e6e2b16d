// Package control holds the pause and abort requests that running download
// sessions poll at their progress checkpoints.
package control

import (
	"fmt"
	"sync"

	"github.com/tanq16/resumer/internal/utils"
)

// Store keeps at most one pending abort target and one pending pause target.
// Requests are matched by exact URL and cleared when consumed.
type Store struct {
	mu     sync.Mutex
	abort  string
	pause  string
	active map[string]struct{}
}

func NewStore() *Store {
	return &Store{active: make(map[string]struct{})}
}

// RequestAbort records an abort for url, replacing any other abort target.
func (s *Store) RequestAbort(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abort = url
}

// RequestPause records a pause for url, replacing any other pause target.
func (s *Store) RequestPause(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pause = url
}

// ConsumeAbort clears the abort request and returns true if it targets url.
// Requests for other URLs are left alone.
func (s *Store) ConsumeAbort(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return consumeIfMatching(&s.abort, url)
}

func (s *Store) ConsumePause(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return consumeIfMatching(&s.pause, url)
}

// Pending reports the requests currently targeting url without clearing them.
func (s *Store) Pending(url string) (abort, pause bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return url != "" && s.abort == url, url != "" && s.pause == url
}

// Acquire takes the single session lease for url. The returned release func
// must be called once the session reaches a terminal state.
func (s *Store) Acquire(url string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[url]; busy {
		return nil, fmt.Errorf("%w: %s", utils.ErrSessionActive, url)
	}
	s.active[url] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.active, url)
			s.mu.Unlock()
		})
	}, nil
}

func consumeIfMatching(stored *string, url string) bool {
	if url == "" || *stored != url {
		return false
	}
	*stored = ""
	return true
}
