// Package models contains the data types shared by the client engine.
package models

import "strings"

// Status is the lifecycle state of a transcription job. The server
// presents statuses in Title Case; comparisons are case-insensitive.
type Status string

const (
	StatusQueued     Status = "Queued"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

// ParseStatus normalizes a server-provided status string. Unknown values
// are passed through unchanged so the renderer can still show them.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "queued":
		return StatusQueued
	case "processing":
		return StatusProcessing
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	}
	return Status(s)
}

// IsTerminal reports whether no further transition is expected.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Equal compares two statuses case-insensitively.
func (s Status) Equal(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// Recording is a submitted audio file awaiting or undergoing
// transcription. Path is the unique, server-assigned identifier and also
// the qualified location within the folder tree.
type Recording struct {
	Path           string `json:"path"`
	FileName       string `json:"fileName"`
	Duration       string `json:"duration,omitempty"` // server-formatted, empty until probed
	DateCreated    string `json:"dateCreated,omitempty"`
	Status         Status `json:"status"`
	Transcription  string `json:"transcription,omitempty"` // present iff Completed
	SpectrogramRef string `json:"spectrogram,omitempty"`
	Model          string `json:"model,omitempty"`
}

// Folder is a node in the library hierarchy. Children holds subfolders
// only; files are listed per directory via a separate query.
type Folder struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Children []*Folder `json:"children,omitempty"`
}

// RootPath is the sentinel path of the top-level collection.
const RootPath = "."

// EntryType discriminates rows of a directory listing.
type EntryType string

const (
	EntryFolder EntryType = "folder"
	EntryFile   EntryType = "file"
)

// Entry is one row of a directory listing, either a subfolder or a
// recording, in the order the server returned it.
type Entry struct {
	Type        EntryType
	Name        string
	Path        string
	FileName    string
	Duration    string
	DateCreated string
	Status      Status
}

// IsFolder reports whether the entry is a subfolder row.
func (e Entry) IsFolder() bool {
	return e.Type == EntryFolder
}
