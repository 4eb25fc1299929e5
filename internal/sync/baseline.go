// Package sync implements the client-side sync protocol: pulling the
// remote head into a mount, staging a working directory's changes against
// it, and pushing a commit with compare-and-swap semantics. None of this is
// content-addressed; it is local, private bookkeeping about a working tree.
package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/fsutil"
)

// Baseline is the on-disk sync state for one working directory: the last
// manifest and data root pulled, plus any metadata edits staged but not yet
// reconciled into the mount. It lives at <workdir>/.leaky/sync.json.
type Baseline struct {
	HeadManifest *dag.CID          `json:"head_manifest,omitempty"`
	DataRoot     *dag.CID          `json:"data_root,omitempty"`
	PendingTags  map[string]string `json:"pending_tags,omitempty"` // path -> raw JSON metadata
}

type baselineWire struct {
	HeadManifest string            `json:"head_manifest,omitempty"`
	DataRoot     string            `json:"data_root,omitempty"`
	PendingTags  map[string]string `json:"pending_tags,omitempty"`
}

// BaselinePath returns the sync-state file path for a working directory.
func BaselinePath(workDir string) string {
	return workDir + "/.leaky/sync.json"
}

// LoadBaseline reads the sync state file, returning an empty Baseline if it
// does not exist yet (a never-pulled working directory).
func LoadBaseline(workDir string) (*Baseline, error) {
	data, err := os.ReadFile(BaselinePath(workDir))
	if os.IsNotExist(err) {
		return &Baseline{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sync: read baseline: %w", err)
	}

	var wire baselineWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("sync: parse baseline: %w", err)
	}

	b := &Baseline{PendingTags: wire.PendingTags}
	if wire.HeadManifest != "" {
		c, err := dag.DecodeCID(wire.HeadManifest)
		if err != nil {
			return nil, fmt.Errorf("sync: decode head_manifest: %w", err)
		}
		b.HeadManifest = &c
	}
	if wire.DataRoot != "" {
		c, err := dag.DecodeCID(wire.DataRoot)
		if err != nil {
			return nil, fmt.Errorf("sync: decode data_root: %w", err)
		}
		b.DataRoot = &c
	}
	return b, nil
}

// Save writes the sync state atomically.
func (b *Baseline) Save(workDir string) error {
	wire := baselineWire{PendingTags: b.PendingTags}
	if b.HeadManifest != nil {
		wire.HeadManifest = dag.EncodeCID(*b.HeadManifest)
	}
	if b.DataRoot != nil {
		wire.DataRoot = dag.EncodeCID(*b.DataRoot)
	}

	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return fmt.Errorf("sync: marshal baseline: %w", err)
	}
	return fsutil.SafeWrite(BaselinePath(workDir), data, 0o644)
}
