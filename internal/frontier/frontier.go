// Package frontier implements the crawler's FrontierSet: the shared
// frontier/queued/visited structure and the bag-of-tasks termination
// protocol that coordinates the worker pool.
package frontier

import (
	"falcon-crawler/internal/urlutil"
	"sync"
)

// Set is the frontier shared by all workers. A single mutex guards the
// frontier/queued/visited structures together with the active-worker count
// and the stop flag, because the termination protocol requires the
// active-worker check and the empty-frontier check to be evaluated inside
// the same critical section as Claim.
type Set struct {
	mu   sync.Mutex
	cond *sync.Cond

	frontier []string
	queued   map[string]struct{}
	visited  map[string]struct{}

	active  int
	stopped bool
}

// New constructs an empty frontier.
func New() *Set {
	s := &Set{
		queued:  make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Offer submits a candidate URL, already domain/extension filtered by the
// caller. It is normalized (fragment stripped) and, if not already queued or
// visited, appended to the frontier. Returns true iff it was newly queued.
func (s *Set) Offer(rawURL string) bool {
	normalized := urlutil.StripFragment(rawURL)
	if normalized == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queued[normalized]; ok {
		return false
	}
	if _, ok := s.visited[normalized]; ok {
		return false
	}

	s.queued[normalized] = struct{}{}
	s.frontier = append(s.frontier, normalized)
	s.cond.Broadcast()
	return true
}

// Claim pops the head of the frontier and marks it visited in one critical
// section, so two workers can never claim the same URL. It blocks on the
// condition variable while the frontier is empty and the crawl has not been
// stopped, waking on every Offer and on the stop signal. ok=false means the
// crawl has stopped; URLs still in the frontier at that point are not
// handed out.
func (s *Set) Claim() (url string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.frontier) == 0 && !s.stopped {
		s.cond.Wait()
	}
	// The stop signal is consulted before popping, even if the frontier is
	// non-empty: once stop is visible, no worker starts a new claim, which
	// bounds the pages_downloaded overshoot past max_pages to the workers
	// already in flight when the flag was raised.
	if s.stopped {
		return "", false
	}
	if len(s.frontier) == 0 {
		return "", false
	}

	url = s.frontier[0]
	s.frontier = s.frontier[1:]
	delete(s.queued, url)
	s.visited[url] = struct{}{}
	s.active++
	return url, true
}

// Release is called by a worker after it has fully processed a claimed URL,
// including offering any newly discovered links back into the frontier. If
// this drives active_workers to zero and the frontier is empty, the crawl
// is quiescent and Release signals stop.
func (s *Set) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == 0 {
		panic("frontier: Release called with active_workers already zero")
	}
	s.active--

	if s.active == 0 && len(s.frontier) == 0 {
		s.stopped = true
	}
	s.cond.Broadcast()
}

// Stop signals global stop unconditionally — used when max_pages is reached.
func (s *Set) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cond.Broadcast()
}

// Stopped reports whether the crawl has been signaled to stop.
func (s *Set) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Size returns the current length of the frontier.
func (s *Set) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frontier)
}

// ActiveWorkers returns the number of workers currently holding a claimed
// URL.
func (s *Set) ActiveWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
