package state

import (
	"sync"
	"sync/atomic"

	"github.com/MaikFakir/wIsper-notes-local/internal/events"
	"github.com/MaikFakir/wIsper-notes-local/internal/metrics"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

// ActiveView identifies which of the two views is showing.
type ActiveView int

const (
	ViewBrowser ActiveView = iota
	ViewDetail
)

func (v ActiveView) String() string {
	if v == ViewDetail {
		return "detail"
	}
	return "browser"
}

// App bundles the job store, the folder tree and the view state behind a
// single mutation entry point. Every navigation bumps the generation;
// fetch results tagged with an older generation are dropped instead of
// applied, so a stale directory can never overwrite a fresh one.
type App struct {
	Store *Store
	Tree  *Tree

	bus        *events.Broadcaster
	generation atomic.Uint64

	mu              sync.RWMutex
	currentPath     string
	activeView      ActiveView
	activeRecording string
	listing         []models.Entry
}

// NewApp creates the application state rooted at the top-level
// collection, in Browser view.
func NewApp(bus *events.Broadcaster) *App {
	return &App{
		Store:       NewStore(),
		Tree:        NewTree(),
		bus:         bus,
		currentPath: models.RootPath,
		activeView:  ViewBrowser,
	}
}

// Generation returns the current view generation.
func (a *App) Generation() uint64 {
	return a.generation.Load()
}

// CurrentPath returns the directory currently browsed.
func (a *App) CurrentPath() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentPath
}

// View returns the active view.
func (a *App) View() ActiveView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeView
}

// ActiveRecording returns the recording path shown in Detail view, or ""
// in Browser view.
func (a *App) ActiveRecording() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeRecording
}

// Listing returns a copy of the current directory listing.
func (a *App) Listing() []models.Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.Entry, len(a.listing))
	copy(out, a.listing)
	return out
}

// NavigateTo switches Browser view to a different directory. Returns the
// new generation to tag subsequent fetches with.
func (a *App) NavigateTo(path string) uint64 {
	a.mu.Lock()
	a.currentPath = path
	a.activeView = ViewBrowser
	a.activeRecording = ""
	a.listing = nil
	a.mu.Unlock()

	gen := a.generation.Add(1)
	a.bus.Publish(events.Event{Kind: events.ViewChanged, Path: path})
	return gen
}

// EnterDetail switches to Detail view for one recording.
func (a *App) EnterDetail(path string) uint64 {
	a.mu.Lock()
	a.activeView = ViewDetail
	a.activeRecording = path
	a.mu.Unlock()

	gen := a.generation.Add(1)
	a.bus.Publish(events.Event{Kind: events.ViewChanged, Path: path})
	return gen
}

// ExitDetail returns to Browser view on the last known directory.
func (a *App) ExitDetail() uint64 {
	a.mu.Lock()
	a.activeView = ViewBrowser
	a.activeRecording = ""
	path := a.currentPath
	a.mu.Unlock()

	gen := a.generation.Add(1)
	a.bus.Publish(events.Event{Kind: events.ViewChanged, Path: path})
	return gen
}

// ApplyListing installs a fetched directory listing. The result is
// dropped when gen no longer matches or the listing is for a directory
// the user has already left. Folder rows are ordered before file rows;
// within each group the server order is preserved.
func (a *App) ApplyListing(gen uint64, path string, entries []models.Entry) bool {
	if gen != a.generation.Load() {
		metrics.RecordStaleDrop()
		return false
	}

	a.mu.Lock()
	if path != a.currentPath {
		a.mu.Unlock()
		metrics.RecordStaleDrop()
		return false
	}

	ordered := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsFolder() {
			ordered = append(ordered, e)
		}
	}
	for _, e := range entries {
		if !e.IsFolder() {
			ordered = append(ordered, e)
		}
	}
	a.listing = ordered
	a.mu.Unlock()

	for _, e := range ordered {
		if !e.IsFolder() {
			a.Store.UpsertListing(e)
		}
	}

	a.bus.Publish(events.Event{Kind: events.ListingChanged, Path: path})
	return true
}

// ApplyTree installs a fetched folder hierarchy snapshot. The tree is
// global, not scoped to the current directory, so it is applied
// regardless of generation.
func (a *App) ApplyTree(folders []*models.Folder) {
	a.Tree.Replace(folders)
	a.bus.Publish(events.Event{Kind: events.TreeChanged})
}

// ApplyDetail installs a fetched recording detail. Dropped when the
// generation moved on or Detail view has switched to another recording.
func (a *App) ApplyDetail(gen uint64, rec models.Recording) bool {
	if gen != a.generation.Load() {
		metrics.RecordStaleDrop()
		return false
	}

	a.mu.RLock()
	mismatch := a.activeView == ViewDetail && a.activeRecording != rec.Path
	a.mu.RUnlock()
	if mismatch {
		metrics.RecordStaleDrop()
		return false
	}

	a.Store.UpsertDetail(rec)
	a.bus.Publish(events.Event{Kind: events.DetailChanged, Path: rec.Path})
	return true
}

// ApplySubmitted records a freshly accepted job under its server path.
func (a *App) ApplySubmitted(rec models.Recording) {
	a.Store.UpsertDetail(rec)
	a.bus.Publish(events.Event{Kind: events.ListingChanged, Path: rec.Path})
}

// ApplyDeleted removes a recording after the server confirmed deletion.
func (a *App) ApplyDeleted(path string) {
	a.Store.Remove(path)
	a.bus.Publish(events.Event{Kind: events.ListingChanged, Path: path})
}

// Banner surfaces a transient status message (poll failures) without
// interrupting the visible view.
func (a *App) Banner(msg string) {
	a.bus.Publish(events.Event{Kind: events.StatusBanner, Message: msg})
}
