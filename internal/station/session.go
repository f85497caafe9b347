package station

import (
	"context"
	"fmt"
	"sync"
)

// Ticket identifies one search started on a Session.
type Ticket struct {
	gen uint64
}

// Session holds the single fetched result set shown to the user. The set is only
// ever replaced wholesale by the newest search, or read.
type Session struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current *Result
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Begin starts a new search generation and cancels the one in flight, if any.
// The returned context must be used for the search.
func (s *Session) Begin(ctx context.Context) (context.Context, Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	s.gen++
	s.cancel = cancel
	return ctx, Ticket{gen: s.gen}
}

// Commit installs r as the current set if t is still the newest search.
// A superseded result is discarded and ErrSuperseded returned.
func (s *Session) Commit(t Ticket, r *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.gen != s.gen {
		return ErrSuperseded
	}
	s.current = r
	s.release()
	return nil
}

// Abandon ends a failed search. It reports whether the search had already been
// superseded; the previous result set is kept either way.
func (s *Session) Abandon(t Ticket) (superseded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.gen != s.gen {
		return true
	}
	s.release()
	return false
}

// Run executes search as the newest generation and commits its result.
func (s *Session) Run(ctx context.Context, search func(context.Context) (*Result, error)) (*Result, error) {
	runCtx, t := s.Begin(ctx)

	r, err := search(runCtx)
	if err != nil {
		if s.Abandon(t) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if err := s.Commit(t, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Current returns the current result set.
func (s *Session) Current() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoResults
	}
	return s.current, nil
}

// Lookup returns the station with the given ID from the current set.
func (s *Session) Lookup(id int) (Station, error) {
	r, err := s.Current()
	if err != nil {
		return Station{}, err
	}
	for _, st := range r.Stations {
		if st.ID == id {
			return st, nil
		}
	}
	return Station{}, fmt.Errorf("station %d: %w", id, ErrStationNotFound)
}

// Select returns the stations with the given IDs from the current set, in the order of ids.
func (s *Session) Select(ids []int) ([]Station, error) {
	r, err := s.Current()
	if err != nil {
		return nil, err
	}
	return r.Select(ids)
}

// Select returns the stations with the given IDs, in the order of ids.
func (r *Result) Select(ids []int) ([]Station, error) {
	byID := make(map[int]int, len(r.Stations))
	for i, st := range r.Stations {
		byID[st.ID] = i
	}

	out := make([]Station, 0, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("station %d: %w", id, ErrStationNotFound)
		}
		out = append(out, r.Stations[i])
	}
	return out, nil
}

// Clear discards the current set and cancels any search in flight.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.release()
	s.current = nil
}

func (s *Session) release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
