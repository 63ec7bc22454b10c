package debug

import (
	"errors"
	"sync"
	"time"
)

// ErrRunNotFound indicates playback was requested for an unknown run.
var ErrRunNotFound = errors.New("run not found")

// ErrAlreadyPlaying indicates the run already has an active player.
var ErrAlreadyPlaying = errors.New("run is already playing")

// player advances one run's replay cursor on a ticker.
type player struct {
	done chan struct{}
	once sync.Once
}

func (p *player) stop() {
	p.once.Do(func() {
		close(p.done)
	})
}

// PlayRun starts replaying the run: the cursor advances one NodeOrder
// step every interval, and playback stops automatically once the
// cursor reaches the last entry. The cursor never decreases and never
// moves past len(NodeOrder)-1, decoupling "data has arrived" from
// "UI reveals it".
//
// Subscribers receive a snapshot after each step. Use StopPlayback to
// halt early; ResetRun also stops playback.
func (s *Store) PlayRun(runID string, interval time.Duration) error {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}

	s.mu.Lock()
	if _, ok := s.runs[runID]; !ok {
		s.mu.Unlock()
		return ErrRunNotFound
	}
	if _, ok := s.players[runID]; ok {
		s.mu.Unlock()
		return ErrAlreadyPlaying
	}
	p := &player{done: make(chan struct{})}
	s.players[runID] = p
	s.mu.Unlock()

	go s.play(runID, interval, p)
	return nil
}

// StopPlayback halts an active replay. Unknown runs are ignored.
func (s *Store) StopPlayback(runID string) {
	s.mu.Lock()
	p := s.players[runID]
	delete(s.players, runID)
	s.mu.Unlock()

	if p != nil {
		p.stop()
	}
}

// play is the ticker loop driving one run's cursor.
func (s *Store) play(runID string, interval time.Duration, p *player) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			if !s.advanceCursor(runID, p) {
				return
			}
		}
	}
}

// advanceCursor moves the cursor one step. Returns false when
// playback should end: run gone, player replaced, or cursor at the
// end of NodeOrder.
func (s *Store) advanceCursor(runID string, p *player) bool {
	s.mu.Lock()

	run, ok := s.runs[runID]
	if !ok || s.players[runID] != p {
		s.mu.Unlock()
		return false
	}

	if run.Cursor >= len(run.NodeOrder)-1 {
		delete(s.players, runID)
		s.mu.Unlock()
		return false
	}

	run.Cursor++
	snapshot := run.clone()
	subs := make([]func(Run), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return true
}
