package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MaikFakir/wIsper-notes-local/internal/events"
	"github.com/MaikFakir/wIsper-notes-local/internal/poller"
	"github.com/MaikFakir/wIsper-notes-local/internal/refresh"
	"github.com/MaikFakir/wIsper-notes-local/internal/state"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

type fakeAPI struct {
	mu sync.Mutex

	listing   []models.Entry
	tree      []*models.Folder
	listErr   error
	detailErr error

	// detail responses are consumed in order; the last one repeats.
	details []models.Recording

	listings int
	trees    int
	fetched  int
}

func (f *fakeAPI) ListDirectory(ctx context.Context, path string) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings++
	return f.listing, f.listErr
}

func (f *fakeAPI) FetchTree(ctx context.Context) ([]*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees++
	return f.tree, nil
}

func (f *fakeAPI) FileDetail(ctx context.Context, path string) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	f.fetched++
	rec := f.details[0]
	if len(f.details) > 1 {
		f.details = f.details[1:]
	}
	return &rec, nil
}

func newController(api *fakeAPI) (*Controller, *state.App, *poller.Scheduler) {
	app := state.NewApp(events.NewBroadcaster())
	refresher := refresh.New(api, app)
	scheduler := poller.New(refresher, 10*time.Millisecond, app.Banner)
	return New(app, refresher, scheduler), app, scheduler
}

func TestStart_LoadsAndPollsRoot(t *testing.T) {
	api := &fakeAPI{
		tree: []*models.Folder{{Path: "notes", Name: "notes"}},
		listing: []models.Entry{
			{Type: models.EntryFolder, Path: "notes", Name: "notes"},
		},
	}
	c, app, scheduler := newController(api)
	defer scheduler.Stop()

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if app.Tree.Find("notes") == nil {
		t.Error("tree missing after initial load")
	}
	if len(app.Listing()) != 1 {
		t.Errorf("unexpected listing: %v", app.Listing())
	}
	scope, path, active := scheduler.Active()
	if !active || scope != poller.ScopeBrowser || path != models.RootPath {
		t.Errorf("expected browser timer on root, got %s %s %v", scope, path, active)
	}
}

func TestOpen_SwitchesToDetailTimer(t *testing.T) {
	api := &fakeAPI{details: []models.Recording{
		{Path: "a.webm", FileName: "a.webm", Status: models.StatusProcessing},
	}}
	c, app, scheduler := newController(api)
	defer scheduler.Stop()

	scheduler.StartBrowser(models.RootPath)
	if err := c.Open(context.Background(), "a.webm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if app.View() != state.ViewDetail || app.ActiveRecording() != "a.webm" {
		t.Errorf("expected detail view of a.webm, got %v %q", app.View(), app.ActiveRecording())
	}
	scope, path, active := scheduler.Active()
	if !active || scope != poller.ScopeDetail || path != "a.webm" {
		t.Errorf("expected detail timer, got %s %s %v", scope, path, active)
	}
}

func TestOpen_SettledRecordingNeedsNoTimer(t *testing.T) {
	api := &fakeAPI{details: []models.Recording{
		{Path: "a.webm", Status: models.StatusCompleted, Transcription: "done"},
	}}
	c, app, scheduler := newController(api)

	if err := c.Open(context.Background(), "a.webm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if app.View() != state.ViewDetail {
		t.Error("expected detail view")
	}
	if _, _, active := scheduler.Active(); active {
		t.Error("a settled recording must not be polled")
	}
}

func TestOpen_FailureRestoresBrowser(t *testing.T) {
	api := &fakeAPI{detailErr: errors.New("boom")}
	c, app, scheduler := newController(api)
	defer scheduler.Stop()

	app.NavigateTo("notes")
	if err := c.Open(context.Background(), "notes/a.webm"); err == nil {
		t.Fatal("expected error")
	}

	if app.View() != state.ViewBrowser {
		t.Error("failed open must leave the browser view visible")
	}
	scope, path, active := scheduler.Active()
	if !active || scope != poller.ScopeBrowser || path != "notes" {
		t.Errorf("expected restored browser timer on notes, got %s %s %v", scope, path, active)
	}
}

func TestBack_ResumesBrowserPolling(t *testing.T) {
	api := &fakeAPI{details: []models.Recording{
		{Path: "notes/a.webm", Status: models.StatusProcessing},
	}}
	c, app, scheduler := newController(api)
	defer scheduler.Stop()

	app.NavigateTo("notes")
	if err := c.Open(context.Background(), "notes/a.webm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Back(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if app.View() != state.ViewBrowser || app.ActiveRecording() != "" {
		t.Error("expected browser view after Back")
	}
	scope, path, active := scheduler.Active()
	if !active || scope != poller.ScopeBrowser || path != "notes" {
		t.Errorf("expected browser timer on notes, got %s %s %v", scope, path, active)
	}
}

func TestNavigate_FetchFailureStillRestartsTimer(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("server unreachable")}
	c, _, scheduler := newController(api)
	defer scheduler.Stop()

	if err := c.Navigate(context.Background(), "notes"); err == nil {
		t.Fatal("expected error")
	}

	scope, path, active := scheduler.Active()
	if !active || scope != poller.ScopeBrowser || path != "notes" {
		t.Errorf("timer must restart on the new path even after a failed fetch, got %s %s %v", scope, path, active)
	}
}

// A freshly submitted job is watched in Detail until the transcript
// arrives, after which polling stops on its own.
func TestDetailPollingObservesCompletion(t *testing.T) {
	api := &fakeAPI{details: []models.Recording{
		{Path: "meeting.webm", FileName: "meeting.webm", Status: models.StatusQueued},
		{Path: "meeting.webm", FileName: "meeting.webm", Status: models.StatusProcessing},
		{Path: "meeting.webm", FileName: "meeting.webm", Status: models.StatusCompleted, Transcription: "hello world"},
	}}
	c, app, scheduler := newController(api)
	defer scheduler.Stop()

	if err := c.Open(context.Background(), "meeting.webm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if rec, ok := app.Store.Get("meeting.webm"); ok && rec.Status == models.StatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec, ok := app.Store.Get("meeting.webm")
	if !ok || rec.Status != models.StatusCompleted || rec.Transcription != "hello world" {
		t.Fatalf("expected completed recording with transcript, got %+v ok=%v", rec, ok)
	}

	// The terminal status shuts the timer down shortly after.
	time.Sleep(50 * time.Millisecond)
	if _, _, active := scheduler.Active(); active {
		t.Error("detail polling must stop once the job settles")
	}
}
