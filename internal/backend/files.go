package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FileStore retrieves binary assets (e.g. product images) from the file
// storage collaborator. Records hold an opaque file id pointing here.
type FileStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewFileStore constructs a file storage client.
func NewFileStore(baseURL string) *FileStore {
	return &FileStore{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Download fetches a stored blob and its content type.
func (s *FileStore) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/files/%s", s.baseURL, escape(fileID)), nil)
	if err != nil {
		return nil, "", fmt.Errorf("backend: build file request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("backend: download %s: %w", fileID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, "", &StatusError{Status: resp.StatusCode, Path: "/files/" + fileID}
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("backend: read file body: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}
