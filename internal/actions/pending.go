package actions

import "sync"

// Kind identifies an interactive flow awaiting confirmation.
type Kind string

const (
	KindRecord Kind = "record"
	KindUpload Kind = "upload"
	KindRename Kind = "rename"
	KindMove   Kind = "move"
)

// Pending is the one in-progress interactive flow. Only one may exist
// at a time; opening a new modal implicitly discards any prior
// unconfirmed one. Cleared on confirm or cancel.
type Pending struct {
	Kind       Kind
	TargetPath string // item being renamed/moved, or "" for record/upload

	SelectedModel       string // record/upload: chosen transcription model
	FileRef             string // upload: local file reference
	SelectedDestination string // move: chosen destination folder, "" until picked
	DestinationChosen   bool
}

// pendingSlot holds the single Pending behind a lock.
type pendingSlot struct {
	mu      sync.Mutex
	current *Pending
}

// begin replaces any prior pending flow with a new one.
func (s *pendingSlot) begin(p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &p
}

// get returns a copy of the pending flow, if one exists.
func (s *pendingSlot) get() (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Pending{}, false
	}
	return *s.current, true
}

// update mutates the pending flow in place when one exists.
func (s *pendingSlot) update(fn func(*Pending)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	fn(s.current)
	return true
}

// clear discards the pending flow.
func (s *pendingSlot) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
