package block

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	gocid "github.com/ipfs/go-cid"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// KuboClient is an HTTP client for the Kubo (IPFS) daemon RPC API. It
// implements Client.
type KuboClient struct {
	apiURL string
	client *http.Client
}

// NewKuboClient builds a client against the Kubo daemon at apiURL, e.g.
// "http://127.0.0.1:5001/api/v0".
func NewKuboClient(apiURL string) *KuboClient {
	return &KuboClient{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Put uploads data as an unchunked block under the given multicodec and
// returns its CID. The daemon's reported hash is re-derived locally
// afterward so Put's return value always matches the CID leaky's own
// hashing would produce.
func (k *KuboClient) Put(ctx context.Context, codec uint64, data []byte) (gocid.Cid, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "block")
	if err != nil {
		return dag.Undef, fmt.Errorf("block: create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return dag.Undef, fmt.Errorf("block: write form data: %w", err)
	}
	if err := w.Close(); err != nil {
		return dag.Undef, fmt.Errorf("block: close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/block/put?cid-codec=%s&mhtype=sha2-256", k.apiURL, codecName(codec))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return dag.Undef, fmt.Errorf("block: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := k.client.Do(req)
	if err != nil {
		return dag.Undef, &leakyerr.Transport{Op: "block/put", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return dag.Undef, &leakyerr.Transport{Op: "block/put", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var result struct {
		Key string `json:"Key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return dag.Undef, &leakyerr.Decode{What: "block/put response", Err: err}
	}

	want, err := dag.ComputeCID(codec, data)
	if err != nil {
		return dag.Undef, fmt.Errorf("block: hash local copy: %w", err)
	}
	if result.Key != "" && result.Key != want.String() {
		return dag.Undef, &leakyerr.Integrity{Expected: want.String(), Actual: result.Key}
	}
	return want, nil
}

// codecName maps a multicodec code to the name Kubo's block/put expects.
func codecName(codec uint64) string {
	switch codec {
	case dag.DagCBORCodec:
		return "dag-cbor"
	default:
		return "raw"
	}
}

// Get fetches a block's raw bytes and verifies its hash before returning.
func (k *KuboClient) Get(ctx context.Context, c gocid.Cid) ([]byte, error) {
	url := k.apiURL + "/block/get?arg=" + c.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("block: build request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, &leakyerr.Transport{Op: "block/get", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusInternalServerError {
		return nil, &leakyerr.NotFound{What: c.String()}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &leakyerr.Transport{Op: "block/get", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &leakyerr.Transport{Op: "block/get", Err: err}
	}

	got, err := dag.ComputeCID(c.Prefix().Codec, data)
	if err != nil {
		return nil, fmt.Errorf("block: hash fetched block: %w", err)
	}
	if got != c {
		return nil, &leakyerr.Integrity{Expected: c.String(), Actual: got.String()}
	}
	return data, nil
}

// Has probes for a block's presence via block/stat, which is cheaper than a
// full block/get when the caller only needs a boolean.
func (k *KuboClient) Has(ctx context.Context, c gocid.Cid) (bool, error) {
	url := k.apiURL + "/block/stat?arg=" + c.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return false, fmt.Errorf("block: build request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return false, &leakyerr.Transport{Op: "block/stat", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusInternalServerError:
		return false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, &leakyerr.Transport{Op: "block/stat", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
}

// Pin pins a CID, recursively walking its DAG links when recursive is true.
func (k *KuboClient) Pin(ctx context.Context, c gocid.Cid, recursive bool) error {
	url := fmt.Sprintf("%s/pin/add?arg=%s&recursive=%t", k.apiURL, c.String(), recursive)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("block: build request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return &leakyerr.Transport{Op: "pin/add", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &leakyerr.Transport{Op: "pin/add", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
	return nil
}

// Unpin releases a previously pinned CID.
func (k *KuboClient) Unpin(ctx context.Context, c gocid.Cid) error {
	url := k.apiURL + "/pin/rm?arg=" + c.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("block: build request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return &leakyerr.Transport{Op: "pin/rm", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &leakyerr.Transport{Op: "pin/rm", Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
	return nil
}
