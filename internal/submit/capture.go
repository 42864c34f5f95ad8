package submit

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
)

// ErrPermissionDenied is returned when the user refuses microphone
// access. No recording is created in that case.
var ErrPermissionDenied = errors.New("microphone permission denied")

// Device abstracts the audio capture hardware (external collaborator).
// Acquire is permission-gated and fallible.
type Device interface {
	Acquire(ctx context.Context) (Stream, error)
}

// Stream delivers captured audio chunks until closed.
type Stream interface {
	Chunks() <-chan []byte
	Close() error
}

// Session is one live capture in progress. Start and stop are
// user-driven; stopping packages all captured chunks into a single
// payload that feeds the same submission path as uploads.
type Session struct {
	ID        string
	StartedAt time.Time

	stream Stream

	mu     sync.Mutex
	chunks [][]byte
	done   chan struct{}
}

// StartCapture acquires the device and begins collecting chunks. On
// denial or hardware error the session never exists.
func StartCapture(ctx context.Context, dev Device) (*Session, error) {
	stream, err := dev.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		stream:    stream,
		done:      make(chan struct{}),
	}

	go s.collect()

	logging.Debug("capture started", logging.String("session", s.ID))
	return s, nil
}

func (s *Session) collect() {
	defer close(s.done)
	for chunk := range s.stream.Chunks() {
		s.mu.Lock()
		s.chunks = append(s.chunks, chunk)
		s.mu.Unlock()
	}
}

// Stop closes the stream and packages the captured audio. The filename
// is derived from the capture start timestamp.
func (s *Session) Stop() (*CaptureResult, error) {
	if err := s.stream.Close(); err != nil {
		return nil, err
	}
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	for _, chunk := range s.chunks {
		buf.Write(chunk)
	}

	name := "recording_" + s.StartedAt.Format("20060102_150405") + ".webm"
	logging.Debug("capture stopped",
		logging.String("session", s.ID),
		logging.Int("bytes", buf.Len()))

	return &CaptureResult{FileName: name, Data: buf.Bytes()}, nil
}

// CaptureResult is a finished capture ready for submission.
type CaptureResult struct {
	FileName string
	Data     []byte
}

// Payload implements Source.
func (r *CaptureResult) Payload() (Payload, error) {
	return Payload{FileName: r.FileName, Data: bytes.NewReader(r.Data)}, nil
}
