// Package actions implements the item actions: delete, rename, move,
// create folder and open. Every mutating action follows the same
// two-step protocol: call the server, then unconditionally refetch the
// folder tree and the current listing. Nothing is patched locally.
package actions

import (
	"context"
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/internal/metrics"
	"github.com/MaikFakir/wIsper-notes-local/internal/refresh"
	"github.com/MaikFakir/wIsper-notes-local/internal/state"
	"github.com/MaikFakir/wIsper-notes-local/internal/submit"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

// ErrNotConfirmed is returned when the user declines a delete prompt.
var ErrNotConfirmed = errors.New("action not confirmed")

// ErrNoDestination is returned when a move is confirmed before a
// destination folder was selected.
var ErrNoDestination = errors.New("no destination folder selected")

// ErrNoPending is returned when confirming a flow that was never begun
// or was discarded by a newer modal.
var ErrNoPending = errors.New("no pending action")

var noSeparator = regexp.MustCompile(`^[^/]+$`)

// API is the slice of the transport the actions need.
type API interface {
	Delete(ctx context.Context, path string) error
	Rename(ctx context.Context, path, newName string) error
	Move(ctx context.Context, source, destination string) error
	CreateFolder(ctx context.Context, path string) error
}

// Opener transitions into Detail view for a recording (ViewController).
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Submitter sends one confirmed submission (JobSubmitter).
type Submitter interface {
	Submit(ctx context.Context, src submit.Source, model, destinationFolder string) (*models.Recording, error)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer func(prompt string) bool

// Controller sequences the interactive item flows.
type Controller struct {
	api       API
	app       *state.App
	refresher *refresh.Refresher
	opener    Opener
	submitter Submitter
	confirm   Confirmer

	Menus   *Menus
	pending pendingSlot
}

// New creates the action controller. confirm may be nil, in which case
// deletes are refused.
func New(api API, app *state.App, refresher *refresh.Refresher, opener Opener, submitter Submitter, confirm Confirmer) *Controller {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	return &Controller{
		api:       api,
		app:       app,
		refresher: refresher,
		opener:    opener,
		submitter: submitter,
		confirm:   confirm,
		Menus:     NewMenus(),
	}
}

// Pending returns the current in-progress flow, if any.
func (c *Controller) Pending() (Pending, bool) {
	return c.pending.get()
}

// Cancel discards the current flow, leaving state untouched.
func (c *Controller) Cancel() {
	c.pending.clear()
}

// Delete removes an item after interactive confirmation. On failure the
// item stays visible and the store is unchanged.
func (c *Controller) Delete(ctx context.Context, path string) error {
	c.Menus.CloseAll()

	if !c.confirm("Delete \"" + path + "\"?") {
		metrics.RecordAction("delete", "cancelled")
		return ErrNotConfirmed
	}

	if err := c.api.Delete(ctx, path); err != nil {
		metrics.RecordAction("delete", "error")
		return err
	}

	c.app.ApplyDeleted(path)
	metrics.RecordAction("delete", "ok")
	logging.Info("item deleted", logging.String("path", path))

	return c.refresher.AfterMutation(ctx, c.app.CurrentPath())
}

// BeginUpload opens the model-selection modal for a chosen local file,
// discarding any prior unconfirmed flow.
func (c *Controller) BeginUpload(fileRef string) {
	c.Menus.CloseAll()
	c.pending.begin(Pending{Kind: KindUpload, FileRef: fileRef})
}

// BeginRecord opens the model-selection modal for a finished capture.
func (c *Controller) BeginRecord() {
	c.Menus.CloseAll()
	c.pending.begin(Pending{Kind: KindRecord})
}

// SelectModel records the transcription model picked in the modal.
func (c *Controller) SelectModel(model string) bool {
	return c.pending.update(func(p *Pending) {
		if p.Kind == KindRecord || p.Kind == KindUpload {
			p.SelectedModel = model
		}
	})
}

// ConfirmUpload submits the pending upload with the selected model into
// the directory currently browsed. On failure the modal stays open, so a
// missing model choice or a server rejection can be corrected in place.
func (c *Controller) ConfirmUpload(ctx context.Context) (*models.Recording, error) {
	p, ok := c.pending.get()
	if !ok || p.Kind != KindUpload {
		return nil, ErrNoPending
	}

	rec, err := c.submitter.Submit(ctx,
		submit.FileSource{Path: p.FileRef}, p.SelectedModel, c.app.CurrentPath())
	if err != nil {
		return nil, err
	}

	c.pending.clear()
	return rec, nil
}

// ConfirmRecord submits a finished capture with the selected model. The
// capture result is produced by the record flow itself and handed in by
// the caller once the user stops recording.
func (c *Controller) ConfirmRecord(ctx context.Context, src submit.Source) (*models.Recording, error) {
	p, ok := c.pending.get()
	if !ok || p.Kind != KindRecord {
		return nil, ErrNoPending
	}

	rec, err := c.submitter.Submit(ctx, src, p.SelectedModel, c.app.CurrentPath())
	if err != nil {
		return nil, err
	}

	c.pending.clear()
	return rec, nil
}

// BeginRename opens the rename flow for an item, discarding any prior
// unconfirmed flow.
func (c *Controller) BeginRename(path string) {
	c.Menus.CloseAll()
	c.pending.begin(Pending{Kind: KindRename, TargetPath: path})
}

type renameRequest struct {
	NewName string
}

func (r renameRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewName,
			validation.Required.Error("name cannot be empty"),
			validation.Match(noSeparator).Error("name cannot contain a path separator"),
		),
	)
}

// ConfirmRename validates the new name client-side as a fast-fail, then
// asks the server, which stays authoritative: a server rejection is
// surfaced even when the client-side check passed.
func (c *Controller) ConfirmRename(ctx context.Context, newName string) error {
	p, ok := c.pending.get()
	if !ok || p.Kind != KindRename {
		return ErrNoPending
	}

	if err := (renameRequest{NewName: newName}).validate(); err != nil {
		metrics.RecordAction("rename", "invalid")
		return err
	}

	if err := c.api.Rename(ctx, p.TargetPath, newName); err != nil {
		// The modal stays open: the pending flow is not cleared.
		metrics.RecordAction("rename", "error")
		return err
	}

	c.pending.clear()
	metrics.RecordAction("rename", "ok")
	logging.Info("item renamed",
		logging.String("path", p.TargetPath), logging.String("new_name", newName))

	return c.refresher.AfterMutation(ctx, c.app.CurrentPath())
}

// BeginMove opens the move flow. The destination is chosen from a
// rendered copy of the folder tree; until one is picked, confirming is
// disabled.
func (c *Controller) BeginMove(path string) {
	c.Menus.CloseAll()
	c.pending.begin(Pending{Kind: KindMove, TargetPath: path})
}

// SelectDestination records the destination folder picked in the modal.
func (c *Controller) SelectDestination(folderPath string) bool {
	return c.pending.update(func(p *Pending) {
		if p.Kind == KindMove {
			p.SelectedDestination = folderPath
			p.DestinationChosen = true
		}
	})
}

// CanConfirmMove reports whether the move confirm control is enabled:
// true iff a destination has been selected since the modal was opened.
func (c *Controller) CanConfirmMove() bool {
	p, ok := c.pending.get()
	return ok && p.Kind == KindMove && p.DestinationChosen
}

// ConfirmMove performs the move to the selected destination.
func (c *Controller) ConfirmMove(ctx context.Context) error {
	p, ok := c.pending.get()
	if !ok || p.Kind != KindMove {
		return ErrNoPending
	}
	if !p.DestinationChosen {
		metrics.RecordAction("move", "invalid")
		return ErrNoDestination
	}

	if err := c.api.Move(ctx, p.TargetPath, p.SelectedDestination); err != nil {
		metrics.RecordAction("move", "error")
		return err
	}

	c.pending.clear()
	metrics.RecordAction("move", "ok")
	logging.Info("item moved",
		logging.String("source", p.TargetPath),
		logging.String("destination", p.SelectedDestination))

	return c.refresher.AfterMutation(ctx, c.app.CurrentPath())
}

// CreateFolder creates a folder at path and refetches.
func (c *Controller) CreateFolder(ctx context.Context, path string) error {
	if err := (renameRequest{NewName: lastSegment(path)}).validate(); err != nil {
		metrics.RecordAction("mkdir", "invalid")
		return err
	}

	if err := c.api.CreateFolder(ctx, path); err != nil {
		metrics.RecordAction("mkdir", "error")
		return err
	}

	metrics.RecordAction("mkdir", "ok")
	logging.Info("folder created", logging.String("path", path))

	return c.refresher.AfterMutation(ctx, c.app.CurrentPath())
}

// Open transitions into Detail view. The only action with no refetch,
// since it mutates nothing.
func (c *Controller) Open(ctx context.Context, path string) error {
	c.Menus.CloseAll()
	if err := c.opener.Open(ctx, path); err != nil {
		metrics.RecordAction("open", "error")
		return err
	}
	metrics.RecordAction("open", "ok")
	return nil
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
