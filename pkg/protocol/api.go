// Package protocol defines the recordings API request/response types.
package protocol

// ListEntry is one element of the GET /api/recordings?path=P response.
// Folder entries carry type/name/path; file entries additionally carry
// fileName, duration, dateCreated and status.
type ListEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Path        string `json:"path"`
	FileName    string `json:"fileName,omitempty"`
	Duration    string `json:"duration,omitempty"`
	DateCreated string `json:"dateCreated,omitempty"`
	Status      string `json:"status,omitempty"`
}

// SubmitResponse is returned by POST /api/recordings on success.
type SubmitResponse struct {
	Message  string `json:"message,omitempty"`
	FilePath string `json:"filePath"`
}

// FileDetailResponse is returned by GET /api/file/{path}.
type FileDetailResponse struct {
	FileName      string `json:"fileName"`
	Path          string `json:"path,omitempty"`
	Status        string `json:"status"`
	Transcription string `json:"transcription,omitempty"`
	Spectrogram   string `json:"spectrogram,omitempty"`
}

// TreeNode is one folder of the GET /api/folders/tree response.
type TreeNode struct {
	Type     string      `json:"type,omitempty"`
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Children []*TreeNode `json:"children,omitempty"`
}

// ErrorResponse is the body the server sends on non-2xx responses.
// Absence of the error field falls back to a generic message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateFolderRequest is the body for POST /api/folders.
type CreateFolderRequest struct {
	Path string `json:"path"`
}

// RenameRequest is the body for POST /api/item/rename.
type RenameRequest struct {
	Path    string `json:"path"`
	NewName string `json:"new_name"`
}

// MoveRequest is the body for POST /api/item/move.
type MoveRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}
