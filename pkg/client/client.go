// Package client provides the HTTP transport for the recordings API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MaikFakir/wIsper-notes-local/internal/logging"
	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
	"github.com/MaikFakir/wIsper-notes-local/pkg/protocol"
	"github.com/MaikFakir/wIsper-notes-local/pkg/retry"
)

// Client is the typed API client. Read paths (listing, tree, detail)
// retry transient failures; mutations run single-attempt because the
// server gives no idempotency guarantee beyond at-least-once.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig retry.Config

	mu        sync.RWMutex
	online    bool
	authToken string
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RetryConfig retry.Config
	AuthToken   string
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryConfig.Attempts == 0 {
		cfg.RetryConfig = retry.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:    20,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		retryConfig: cfg.RetryConfig,
		online:      true,
		authToken:   cfg.AuthToken,
	}
}

// SetAuthToken sets the bearer token for requests.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// IsOnline returns true if the last request reached the server.
func (c *Client) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

func (c *Client) setOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online != online {
		if online {
			logging.Info("server is reachable again")
		} else {
			logging.Warn("server is unreachable")
		}
	}
	c.online = online
}

func (c *Client) prepare(req *http.Request) {
	c.mu.RLock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	c.mu.RUnlock()
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// escapePath escapes each segment of a library path for use in a URL,
// keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// errorFromResponse converts a non-2xx response into a ServerError,
// using the server's {error} body when present.
func errorFromResponse(resp *http.Response) error {
	msg := genericMessage
	var body protocol.ErrorResponse
	if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &ServerError{StatusCode: resp.StatusCode, Message: msg}
}

// do issues a request, classifies failures, and decodes a JSON body into
// out when out is non-nil. Server errors >= 500 are marked retryable.
func (c *Client) do(req *http.Request, out interface{}) error {
	c.prepare(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		return retry.Mark(&TransportError{Err: err})
	}
	defer resp.Body.Close()

	c.setOnline(true)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := errorFromResponse(resp)
		if resp.StatusCode >= 500 {
			return retry.Mark(serr)
		}
		return serr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Field: "body", Detail: fmt.Sprintf("decode: %v", err)}
	}
	return nil
}

// ListDirectory fetches the files and immediate subfolders of a
// directory. Server order is preserved.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]models.Entry, error) {
	return retry.Result(ctx, c.retryConfig, func() ([]models.Entry, error) {
		u := c.baseURL + "/api/recordings?path=" + url.QueryEscape(path)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		var raw []protocol.ListEntry
		if err := c.do(req, &raw); err != nil {
			return nil, err
		}

		entries := make([]models.Entry, 0, len(raw))
		for _, e := range raw {
			entry := models.Entry{
				Name:        e.Name,
				Path:        e.Path,
				FileName:    e.FileName,
				Duration:    e.Duration,
				DateCreated: e.DateCreated,
			}
			if e.Type == string(models.EntryFolder) {
				entry.Type = models.EntryFolder
			} else {
				entry.Type = models.EntryFile
				entry.Status = models.ParseStatus(e.Status)
			}
			entries = append(entries, entry)
		}
		return entries, nil
	})
}

// FetchTree fetches the full folder hierarchy, independent of the
// current path.
func (c *Client) FetchTree(ctx context.Context) ([]*models.Folder, error) {
	return retry.Result(ctx, c.retryConfig, func() ([]*models.Folder, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/folders/tree", nil)
		if err != nil {
			return nil, err
		}

		var raw []*protocol.TreeNode
		if err := c.do(req, &raw); err != nil {
			return nil, err
		}
		return convertTree(raw), nil
	})
}

func convertTree(nodes []*protocol.TreeNode) []*models.Folder {
	folders := make([]*models.Folder, 0, len(nodes))
	for _, n := range nodes {
		folders = append(folders, &models.Folder{
			Path:     n.Path,
			Name:     n.Name,
			Children: convertTree(n.Children),
		})
	}
	return folders
}

// FileDetail fetches the full detail of a single recording, including
// transcription text and, when generated, a spectrogram reference.
func (c *Client) FileDetail(ctx context.Context, path string) (*models.Recording, error) {
	return retry.Result(ctx, c.retryConfig, func() (*models.Recording, error) {
		u := c.baseURL + "/api/file/" + escapePath(path)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		var detail protocol.FileDetailResponse
		if err := c.do(req, &detail); err != nil {
			return nil, err
		}
		if detail.FileName == "" && detail.Status == "" {
			return nil, &ProtocolError{Field: "fileName", Detail: "empty detail for " + path}
		}

		return &models.Recording{
			Path:           path,
			FileName:       detail.FileName,
			Status:         models.ParseStatus(detail.Status),
			Transcription:  detail.Transcription,
			SpectrogramRef: detail.Spectrogram,
		}, nil
	})
}

// SubmitRequest carries one job submission.
type SubmitRequest struct {
	FileName          string
	Payload           io.Reader
	Model             string
	DestinationFolder string
}

// Submit sends a recording for processing. On success the server returns
// the path under which the job was stored; a 2xx response without it is
// a protocol error.
func (c *Client) Submit(ctx context.Context, sub SubmitRequest) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", sub.FileName)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, sub.Payload); err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	if err := w.WriteField("model", sub.Model); err != nil {
		return "", err
	}
	if err := w.WriteField("destination_folder", sub.DestinationFolder); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/recordings", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp protocol.SubmitResponse
	if err := c.do(req, &resp); err != nil {
		return "", unmark(err)
	}
	if resp.FilePath == "" {
		return "", &ProtocolError{Field: "filePath", Detail: "submission accepted without a job path"}
	}
	return resp.FilePath, nil
}

// Delete removes a recording or folder on the server.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/recordings/"+escapePath(path), nil)
	if err != nil {
		return err
	}
	return unmark(c.do(req, nil))
}

// CreateFolder creates a folder at the given library path.
func (c *Client) CreateFolder(ctx context.Context, path string) error {
	return c.postJSON(ctx, "/api/folders", protocol.CreateFolderRequest{Path: path})
}

// Rename renames a recording or folder in place.
func (c *Client) Rename(ctx context.Context, path, newName string) error {
	return c.postJSON(ctx, "/api/item/rename", protocol.RenameRequest{Path: path, NewName: newName})
}

// Move relocates a recording or folder into the destination folder.
func (c *Client) Move(ctx context.Context, source, destination string) error {
	return c.postJSON(ctx, "/api/item/move", protocol.MoveRequest{Source: source, Destination: destination})
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return unmark(c.do(req, nil))
}

// unmark strips the retryable marker on single-attempt paths so callers
// see the underlying typed error.
func unmark(err error) error {
	if err == nil {
		return nil
	}
	if te, ok := AsTransport(err); ok {
		return te
	}
	if se, ok := AsServer(err); ok {
		return se
	}
	return err
}
