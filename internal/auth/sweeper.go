package auth

import (
	"context"
	"sync"
	"time"
)

// sweepTimeout is the maximum time allowed for a single sweep pass.
const sweepTimeout = 30 * time.Second

// Sweeper periodically removes expired sessions so the sessions table
// does not grow without bound between logins.
type Sweeper struct {
	sessions *Sessions
	interval time.Duration
	stopCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewSweeper creates a Sweeper that runs every interval.
func NewSweeper(sessions *Sessions, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background sweep loop. Calling Start on a running
// sweeper does nothing.
func (s *Sweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.loop()
}

// Stop halts the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

func (s *Sweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// An initial sweep clears whatever accumulated while the server
	// was down.
	s.sweep()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sessions.Sweep(ctx)
	if err != nil {
		s.sessions.logger.Error("sweeping expired sessions", "err", err)
		return
	}
	if n > 0 {
		s.sessions.logger.Info("swept expired sessions", "count", n)
	}
}
