// Package refresh implements the shared fetch-then-apply routine.
// Polling, submission and the item actions all converge here, so there
// is exactly one place where server responses become client state.
package refresh

import (
	"context"
	"time"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/internal/metrics"
	"github.com/MaikFakir/wIsper-notes-local/internal/state"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

// API is the slice of the transport the refresher needs.
type API interface {
	ListDirectory(ctx context.Context, path string) ([]models.Entry, error)
	FetchTree(ctx context.Context) ([]*models.Folder, error)
	FileDetail(ctx context.Context, path string) (*models.Recording, error)
}

// Refresher fetches server snapshots and applies them through the state
// entry points. Each fetch is tagged with the view generation at issue
// time; results arriving after a navigation are dropped by Apply.
type Refresher struct {
	api API
	app *state.App
}

// New creates a refresher.
func New(api API, app *state.App) *Refresher {
	return &Refresher{api: api, app: app}
}

// Directory refreshes the listing of one directory.
func (r *Refresher) Directory(ctx context.Context, path string) error {
	gen := r.app.Generation()
	start := time.Now()

	entries, err := r.api.ListDirectory(ctx, path)
	metrics.ObserveRefresh("directory", time.Since(start).Seconds())
	if err != nil {
		return err
	}

	if !r.app.ApplyListing(gen, path, entries) {
		logging.Debug("dropped stale listing", logging.String("path", path))
	}
	return nil
}

// TreeSnapshot refreshes the full folder hierarchy.
func (r *Refresher) TreeSnapshot(ctx context.Context) error {
	start := time.Now()

	folders, err := r.api.FetchTree(ctx)
	metrics.ObserveRefresh("tree", time.Since(start).Seconds())
	if err != nil {
		return err
	}

	r.app.ApplyTree(folders)
	return nil
}

// Detail refreshes one recording's detail and reports whether its status
// is terminal, so the detail poller can stop once the job settles.
func (r *Refresher) Detail(ctx context.Context, path string) (bool, error) {
	gen := r.app.Generation()
	start := time.Now()

	rec, err := r.api.FileDetail(ctx, path)
	metrics.ObserveRefresh("detail", time.Since(start).Seconds())
	if err != nil {
		return false, err
	}

	if !r.app.ApplyDetail(gen, *rec) {
		logging.Debug("dropped stale detail", logging.String("path", path))
	}
	return rec.Status.IsTerminal(), nil
}

// AfterMutation runs the mandatory post-mutation refetch: the full tree
// and the listing of the directory currently browsed. Structure is never
// patched locally, so both are unconditional on success.
func (r *Refresher) AfterMutation(ctx context.Context, currentPath string) error {
	if err := r.TreeSnapshot(ctx); err != nil {
		return err
	}
	return r.Directory(ctx, currentPath)
}
