// Package view implements the two-state view machine: Browser (tree +
// listing) and Detail (single recording). The controller owns which poll
// timer is live; every transition is stop-then-start so there is never
// zero timers while a view expects one, and never two.
package view

import (
	"context"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/internal/poller"
	"github.com/MaikFakir/wIsper-notes-local/internal/refresh"
	"github.com/MaikFakir/wIsper-notes-local/internal/state"
)

// Controller drives view transitions.
type Controller struct {
	app       *state.App
	refresher *refresh.Refresher
	scheduler *poller.Scheduler
}

// New creates the view controller.
func New(app *state.App, refresher *refresh.Refresher, scheduler *poller.Scheduler) *Controller {
	return &Controller{app: app, refresher: refresher, scheduler: scheduler}
}

// Start performs the initial load: tree plus root listing, then begins
// Browser polling.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.refresher.TreeSnapshot(ctx); err != nil {
		return err
	}
	if err := c.refresher.Directory(ctx, c.app.CurrentPath()); err != nil {
		return err
	}
	c.scheduler.StartBrowser(c.app.CurrentPath())
	return nil
}

// Navigate switches the Browser view to a different directory. The
// poller is restarted for the new path even when the first fetch fails;
// transient errors are expected and the next tick retries.
func (c *Controller) Navigate(ctx context.Context, path string) error {
	c.scheduler.Stop()
	c.app.NavigateTo(path)

	err := c.refresher.Directory(ctx, path)
	if err != nil {
		c.app.Banner(err.Error())
	}
	c.scheduler.StartBrowser(path)
	return err
}

// Open transitions Browser -> Detail for one recording. A failed detail
// fetch is terminal for the attempted transition: the Browser view stays
// visible and its poller is restored.
func (c *Controller) Open(ctx context.Context, path string) error {
	c.scheduler.Stop()
	c.app.EnterDetail(path)

	terminal, err := c.refresher.Detail(ctx, path)
	if err != nil {
		c.app.ExitDetail()
		c.scheduler.StartBrowser(c.app.CurrentPath())
		return err
	}

	if terminal {
		// Completed/Failed jobs never transition again; no timer needed.
		logging.Debug("opened settled recording", logging.String("path", path))
		return nil
	}
	c.scheduler.StartDetail(path)
	return nil
}

// Back transitions Detail -> Browser, resuming polling on the last known
// directory.
func (c *Controller) Back(ctx context.Context) error {
	c.scheduler.Stop()
	c.app.ExitDetail()

	path := c.app.CurrentPath()
	err := c.refresher.Directory(ctx, path)
	if err != nil {
		c.app.Banner(err.Error())
	}
	c.scheduler.StartBrowser(path)
	return err
}
