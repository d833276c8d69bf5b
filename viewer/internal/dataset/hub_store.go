package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HubStore fetches dataset objects from a Hugging Face dataset repository.
type HubStore struct {
	endpoint string
	repo     string
	revision string
	token    string
	maxBytes int64
	client   *http.Client
}

// HubOptions configures a HubStore.
type HubOptions struct {
	Endpoint string
	Repo     string
	Revision string
	Token    string
	MaxBytes int64
	Client   *http.Client
}

// NewHubStore creates a store for the given repository id.
func NewHubStore(opts HubOptions) *HubStore {
	if opts.Revision == "" {
		opts.Revision = "main"
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &HubStore{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		repo:     opts.Repo,
		revision: opts.Revision,
		token:    opts.Token,
		maxBytes: opts.MaxBytes,
		client:   opts.Client,
	}
}

func (s *HubStore) Name() string {
	return "hf:" + s.repo
}

// Fetch downloads one object. 404 maps to ErrObjectNotFound; any other
// non-2xx status is a transfer failure.
func (s *HubStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	objectURL := fmt.Sprintf("%s/datasets/%s/resolve/%s/%s",
		s.endpoint, s.repo, url.PathEscape(s.revision), url.PathEscape(name))

	resp, err := s.get(ctx, objectURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s in %s", ErrObjectNotFound, name, s.repo)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, name)
	}

	return readLimited(resp.Body, name, s.maxBytes)
}

type hubTreeEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// List returns the file paths at the repository root.
func (s *HubStore) List(ctx context.Context) ([]string, error) {
	treeURL := fmt.Sprintf("%s/api/datasets/%s/tree/%s", s.endpoint, s.repo, url.PathEscape(s.revision))

	resp, err := s.get(ctx, treeURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("unexpected status %d listing %s", resp.StatusCode, s.repo)
	}

	var entries []hubTreeEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode listing of %s: %w", s.repo, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		names = append(names, e.Path)
	}
	return names, nil
}

func (s *HubStore) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", s.endpoint, err)
	}
	return resp, nil
}

func readLimited(r io.Reader, name string, limit int64) ([]byte, error) {
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, &ObjectTooLargeError{Name: name, Limit: limit}
	}
	return data, nil
}
