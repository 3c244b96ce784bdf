package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type step int

const (
	stepRun step = iota
	stepSkip
	stepStop
)

// StartReconciler retries RefreshUser every RetryInterval while a token is
// stored but no user is loaded. It stops on its own once a user is loaded,
// the token is cleared, a login or logout happens after it started, or ctx
// is done. stop cancels it and waits for it to exit.
func (s *Session) StartReconciler(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.reconcile(ctx, gen)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (s *Session) reconcile(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(s.cfg.RetryInterval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		switch s.nextStep(gen) {
		case stepSkip:
			continue
		case stepStop:
			s.logger.DebugContext(ctx, "reconciler stopped", slog.Int("attempts", attempts))
			return
		}

		attempts++
		if err := s.RefreshUser(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		s.logger.InfoContext(ctx, "session restored", slog.Int("attempts", attempts))
		return
	}
}

func (s *Session) nextStep(gen uint64) step {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.generation != gen || !s.hasToken || s.user != nil:
		if !s.bootstrapped {
			return stepSkip
		}
		return stepStop
	case s.inflight > 0 || !s.bootstrapped:
		return stepSkip
	}
	return stepRun
}
