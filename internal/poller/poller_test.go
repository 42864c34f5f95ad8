package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	mu          sync.Mutex
	dirCalls    int
	detailCalls int
	dirErr      error
	detailErr   error
	terminal    bool
	delay       time.Duration
}

func (f *fakeSource) Directory(ctx context.Context, path string) error {
	f.mu.Lock()
	f.dirCalls++
	err := f.dirErr
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (f *fakeSource) Detail(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return f.terminal, f.detailErr
}

func (f *fakeSource) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirCalls, f.detailCalls
}

func TestBrowserPollingTicks(t *testing.T) {
	src := &fakeSource{}
	s := New(src, 10*time.Millisecond, nil)

	s.StartBrowser("notes")
	defer s.Stop()

	time.Sleep(120 * time.Millisecond)
	dir, _ := src.counts()
	if dir < 2 {
		t.Errorf("expected at least 2 ticks, got %d", dir)
	}

	scope, path, active := s.Active()
	if !active || scope != ScopeBrowser || path != "notes" {
		t.Errorf("unexpected active timer: %s %s %v", scope, path, active)
	}
}

func TestStartStopsPreviousTimer(t *testing.T) {
	src := &fakeSource{}
	s := New(src, 10*time.Millisecond, nil)

	s.StartBrowser("a")
	s.StartDetail("a/x.webm")
	defer s.Stop()

	scope, path, active := s.Active()
	if !active || scope != ScopeDetail || path != "a/x.webm" {
		t.Fatalf("expected single detail timer, got %s %s %v", scope, path, active)
	}

	// The browser timer must be dead: its count settles.
	time.Sleep(50 * time.Millisecond)
	before, _ := src.counts()
	time.Sleep(60 * time.Millisecond)
	after, _ := src.counts()
	if after != before {
		t.Errorf("browser timer still ticking after replacement: %d -> %d", before, after)
	}
}

func TestStopCancelsTimer(t *testing.T) {
	src := &fakeSource{}
	s := New(src, 10*time.Millisecond, nil)

	s.StartBrowser("a")
	s.Stop()

	if _, _, active := s.Active(); active {
		t.Fatal("expected no active timer after Stop")
	}

	before, _ := src.counts()
	time.Sleep(60 * time.Millisecond)
	after, _ := src.counts()
	if after != before {
		t.Errorf("timer still ticking after Stop: %d -> %d", before, after)
	}
}

func TestDetailStopsOnTerminal(t *testing.T) {
	src := &fakeSource{terminal: true}
	s := New(src, 10*time.Millisecond, nil)

	s.StartDetail("meeting.webm")
	time.Sleep(80 * time.Millisecond)

	if _, _, active := s.Active(); active {
		t.Error("expected timer to stop after observing a terminal status")
	}
	_, detail := src.counts()
	if detail == 0 {
		t.Fatal("expected at least one detail tick")
	}
	if detail > 2 {
		t.Errorf("polling continued after terminal status: %d ticks", detail)
	}
}

func TestOverlapSuppression(t *testing.T) {
	src := &fakeSource{delay: 50 * time.Millisecond}
	s := New(src, 10*time.Millisecond, nil)

	s.StartBrowser("slow")
	defer s.Stop()

	time.Sleep(110 * time.Millisecond)
	dir, _ := src.counts()
	// Without suppression ~10 ticks would have fired; with it at most
	// one fetch runs at a time.
	if dir > 4 {
		t.Errorf("expected overlapping ticks to be skipped, got %d fetches", dir)
	}
}

func TestTickFailureKeepsPollingAndNotifies(t *testing.T) {
	src := &fakeSource{dirErr: errors.New("server unreachable")}

	var mu sync.Mutex
	var banners []string
	s := New(src, 10*time.Millisecond, func(msg string) {
		mu.Lock()
		banners = append(banners, msg)
		mu.Unlock()
	})

	s.StartBrowser("notes")
	defer s.Stop()

	time.Sleep(120 * time.Millisecond)

	if _, _, active := s.Active(); !active {
		t.Error("transient failures must not stop the timer")
	}
	dir, _ := src.counts()
	if dir < 2 {
		t.Errorf("expected polling to continue after failure, got %d ticks", dir)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(banners) == 0 {
		t.Error("expected failure banners")
	}
}
