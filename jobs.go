package initorch

import (
	"context"
	"sync"
)

// job is one tracked background task. err is written exactly once, before
// done is closed.
type job struct {
	done chan struct{}
	err  error
}

// Jobs tracks launched background tasks and provides an await-all barrier.
// The zero value is ready to use.
//
// Failures are isolated per job: one job failing never cancels its siblings.
// The first failure (in completion order) is latched and surfaced by Wait.
type Jobs struct {
	mu       sync.Mutex
	jobs     []*job
	firstErr error
}

// Launch runs fn on its own goroutine and tracks it until the next fully
// successful Wait. Launch returns immediately.
func (s *Jobs) Launch(ctx context.Context, fn func(context.Context) error) {
	j := &job{done: make(chan struct{})}
	s.mu.Lock()
	s.jobs = append(s.jobs, j)
	s.mu.Unlock()

	go func() {
		err := fn(ctx)
		s.mu.Lock()
		j.err = err
		if err != nil && s.firstErr == nil {
			s.firstErr = err
		}
		s.mu.Unlock()
		close(j.done)
	}()
}

// Wait blocks until every tracked job reaches a terminal state, including
// jobs launched while the wait is in progress. A fully successful wait
// clears the collection so the next burst of launches starts a fresh batch.
// If any job failed, Wait returns an AwaitError wrapping the first failure
// and keeps the collection; retry is the caller's decision.
func (s *Jobs) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		var pending *job
		for _, j := range s.jobs {
			select {
			case <-j.done:
			default:
				pending = j
			}
			if pending != nil {
				break
			}
		}
		if pending == nil {
			err := s.firstErr
			if err == nil {
				s.jobs = nil
			}
			s.mu.Unlock()
			if err != nil {
				return AwaitError{Err: err}
			}
			return nil
		}
		s.mu.Unlock()

		select {
		case <-pending.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// AllDone reports whether no tracked job is still running. It never blocks,
// never clears the collection, and does not imply Wait has been called.
func (s *Jobs) AllDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		select {
		case <-j.done:
		default:
			return false
		}
	}
	return true
}
