package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// RemoteHead is the remote's single current head manifest CID, updated only
// through a compare-and-swap. The core depends on this interface;
// HTTPRemoteHead talks to a server and MemRemoteHead keeps the head in
// memory, mirroring the block client split.
type RemoteHead interface {
	// Head returns the remote's current head manifest CID, or dag.Undef if
	// the remote has never had one (genesis).
	Head(ctx context.Context) (dag.CID, error)
	// CompareAndSwap sets the remote head to next only if its current head
	// still equals expect. On mismatch it returns *leakyerr.HeadAdvanced
	// carrying the actual head.
	CompareAndSwap(ctx context.Context, expect dag.CID, next dag.CID) error
}

// HTTPRemoteHead talks to the out-of-scope HTTP server's /api/v0/root
// endpoints. Credentials, when non-nil, are sent as a Bearer token, per the
// spec's open question about optional admin authentication on push.
type HTTPRemoteHead struct {
	baseURL     string
	client      *http.Client
	credentials *string
}

// NewHTTPRemoteHead builds a RemoteHead against the server at baseURL, e.g.
// "https://leaky.example.com". credentials may be nil.
func NewHTTPRemoteHead(baseURL string, credentials *string) *HTTPRemoteHead {
	return &HTTPRemoteHead{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: 15 * time.Second},
		credentials: credentials,
	}
}

func (h *HTTPRemoteHead) authorize(req *http.Request) {
	if h.credentials != nil {
		req.Header.Set("Authorization", "Bearer "+*h.credentials)
	}
}

type headResponse struct {
	CID string `json:"cid"`
}

// Head fetches the remote's current head.
func (h *HTTPRemoteHead) Head(ctx context.Context) (dag.CID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/v0/root", nil)
	if err != nil {
		return dag.Undef, fmt.Errorf("history: build request: %w", err)
	}
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return dag.Undef, &leakyerr.Transport{Op: "GET /api/v0/root", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return dag.Undef, &leakyerr.Transport{Op: "GET /api/v0/root", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var parsed headResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return dag.Undef, &leakyerr.Decode{What: "root response", Err: err}
	}
	if parsed.CID == "" {
		return dag.Undef, nil
	}
	return dag.DecodeCID(parsed.CID)
}

type casRequest struct {
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

type conflictResponse struct {
	Actual string `json:"actual"`
}

// CompareAndSwap attempts to advance the remote head from expect to next.
func (h *HTTPRemoteHead) CompareAndSwap(ctx context.Context, expect dag.CID, next dag.CID) error {
	body := casRequest{Next: dag.EncodeCID(next)}
	if expect != dag.Undef {
		body.Previous = dag.EncodeCID(expect)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("history: marshal cas request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/v0/root", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("history: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	h.authorize(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return &leakyerr.Transport{Op: "POST /api/v0/root", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		var parsed conflictResponse
		_ = json.NewDecoder(resp.Body).Decode(&parsed)
		return &leakyerr.HeadAdvanced{Actual: parsed.Actual}
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return &leakyerr.Transport{Op: "POST /api/v0/root", Err: fmt.Errorf("status %d: %s", resp.StatusCode, respBody)}
	}
}
