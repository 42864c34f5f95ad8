// Package submit orchestrates job submission. Live capture and file
// upload converge on one Submit path: both produce a named payload that
// goes to the server with an explicitly chosen model.
package submit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/internal/metrics"
	"github.com/MaikFakir/wIsper-notes-local/internal/refresh"
	"github.com/MaikFakir/wIsper-notes-local/internal/state"
	"github.com/MaikFakir/wIsper-notes-local/pkg/client"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

// Payload is the audio to submit.
type Payload struct {
	FileName string
	Data     io.Reader
}

// Source produces a submission payload. CaptureResult and FileSource
// both implement it.
type Source interface {
	Payload() (Payload, error)
}

// FileSource is a user-selected file for upload.
type FileSource struct {
	Path string
}

// Payload implements Source.
func (f FileSource) Payload() (Payload, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return Payload{}, fmt.Errorf("open upload: %w", err)
	}
	return Payload{FileName: filepath.Base(f.Path), Data: file}, nil
}

// API is the slice of the transport the submitter needs.
type API interface {
	Submit(ctx context.Context, sub client.SubmitRequest) (string, error)
}

// Submitter sends jobs and records them as Queued under the
// server-returned path.
type Submitter struct {
	api       API
	app       *state.App
	refresher *refresh.Refresher
}

// New creates a submitter.
func New(api API, app *state.App, refresher *refresh.Refresher) *Submitter {
	return &Submitter{api: api, app: app, refresher: refresher}
}

type request struct {
	Model             string
	DestinationFolder string
}

func (r request) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Model,
			validation.Required.Error("a transcription model must be chosen")),
		validation.Field(&r.DestinationFolder,
			validation.Required.Error("a destination folder is required")),
	)
}

// Submit sends one recording for processing. Submission is never allowed
// without an explicit model choice. On success the recording appears in
// the store as Queued immediately, followed by the shared refetch so the
// visible list updates without waiting for the next poll tick.
func (s *Submitter) Submit(ctx context.Context, src Source, model, destinationFolder string) (*models.Recording, error) {
	if err := (request{Model: model, DestinationFolder: destinationFolder}).validate(); err != nil {
		metrics.RecordSubmission("invalid")
		return nil, err
	}

	payload, err := src.Payload()
	if err != nil {
		metrics.RecordSubmission("invalid")
		return nil, err
	}
	if closer, ok := payload.Data.(io.Closer); ok {
		defer closer.Close()
	}

	path, err := s.api.Submit(ctx, client.SubmitRequest{
		FileName:          payload.FileName,
		Payload:           payload.Data,
		Model:             model,
		DestinationFolder: destinationFolder,
	})
	if err != nil {
		metrics.RecordSubmission("error")
		return nil, err
	}

	rec := models.Recording{
		Path:     path,
		FileName: filepath.Base(path),
		Status:   models.StatusQueued,
		Model:    model,
	}
	s.app.ApplySubmitted(rec)
	metrics.RecordSubmission("ok")

	logging.Info("job submitted",
		logging.String("path", path), logging.String("model", model))

	if err := s.refresher.AfterMutation(ctx, s.app.CurrentPath()); err != nil {
		// The job is accepted; a failed refetch only delays the list
		// update until the next poll tick.
		logging.Warn("post-submit refresh failed", logging.Err(err))
	}

	return &rec, nil
}
