// Package poller owns the repeating refresh timer. At most one timer is
// active process-wide; starting a scope always stops the previous one
// first, so the "exactly one timer per visible view" invariant is
// structural rather than best-effort.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/internal/metrics"
)

// Scope names what a timer watches.
type Scope string

const (
	ScopeBrowser Scope = "browser"
	ScopeDetail  Scope = "detail"
)

// Source performs one refresh per tick. Detail additionally reports
// whether the watched job reached a terminal status.
type Source interface {
	Directory(ctx context.Context, path string) error
	Detail(ctx context.Context, path string) (terminal bool, err error)
}

// DefaultInterval is the polling cadence for both scopes.
const DefaultInterval = 3 * time.Second

// Scheduler runs at most one repeating poll timer.
type Scheduler struct {
	source   Source
	interval time.Duration
	notify   func(msg string) // transient tick-failure banner

	mu      sync.Mutex
	current *run
}

type run struct {
	scope  Scope
	path   string
	cancel context.CancelFunc
	// inFlight suppresses a tick while the previous one is unresolved.
	inFlight sync.Mutex
}

// New creates a scheduler. notify may be nil.
func New(source Source, interval time.Duration, notify func(string)) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Scheduler{source: source, interval: interval, notify: notify}
}

// StartBrowser begins polling a directory listing.
func (s *Scheduler) StartBrowser(path string) {
	s.start(ScopeBrowser, path)
}

// StartDetail begins polling one recording's detail. The timer stops on
// its own once a tick observes a terminal status.
func (s *Scheduler) StartDetail(path string) {
	s.start(ScopeDetail, path)
}

func (s *Scheduler) start(scope Scope, path string) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{scope: scope, path: path, cancel: cancel}

	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.current = r
	s.mu.Unlock()

	metrics.SetActivePollers(1)
	logging.Debug("poller started",
		logging.String("scope", string(scope)), logging.String("path", path))

	go s.loop(ctx, r)
}

// Stop cancels the active timer, if any. In-flight requests are not
// aborted; their results are discarded by the generation guard.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}
	s.mu.Unlock()
	metrics.SetActivePollers(0)
}

// stopRun stops the timer only if r is still the active run, so a
// terminal-status stop cannot cancel a timer started by a newer
// navigation.
func (s *Scheduler) stopRun(r *run) {
	s.mu.Lock()
	if s.current == r {
		r.cancel()
		s.current = nil
		metrics.SetActivePollers(0)
	}
	s.mu.Unlock()
}

// Active reports whether a timer is running and for which scope/path.
func (s *Scheduler) Active() (Scope, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", "", false
	}
	return s.current.scope, s.current.path, true
}

func (s *Scheduler) loop(ctx context.Context, r *run) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.inFlight.TryLock() {
				metrics.RecordPollTick(string(r.scope), "skipped")
				continue
			}
			go func() {
				defer r.inFlight.Unlock()
				s.tick(ctx, r)
			}()
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, r *run) {
	switch r.scope {
	case ScopeDetail:
		terminal, err := s.source.Detail(ctx, r.path)
		if err != nil {
			s.tickFailed(r, err)
			return
		}
		metrics.RecordPollTick(string(r.scope), "ok")
		if terminal {
			logging.Debug("job settled, stopping detail poll",
				logging.String("path", r.path))
			s.stopRun(r)
		}
	default:
		if err := s.source.Directory(ctx, r.path); err != nil {
			s.tickFailed(r, err)
			return
		}
		metrics.RecordPollTick(string(r.scope), "ok")
	}
}

// tickFailed reports a failed tick and keeps the timer alive; transient
// failures are expected and only navigation stops polling.
func (s *Scheduler) tickFailed(r *run, err error) {
	if r.scope == ScopeDetail {
		// The watched recording may be gone (deleted elsewhere); the
		// banner tells the user, the next tick tells the truth.
		logging.Warn("detail poll failed",
			logging.String("path", r.path), logging.Err(err))
	} else {
		logging.Warn("listing poll failed",
			logging.String("path", r.path), logging.Err(err))
	}
	metrics.RecordPollTick(string(r.scope), "error")
	s.notify(err.Error())
}
