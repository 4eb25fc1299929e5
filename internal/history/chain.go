// Package history implements the manifest chain: appending a new manifest
// on a successful push, walking it backward, and the compare-and-swap
// exchange with a remote head.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/systemshift/leaky/internal/block"
	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

// Append builds the next manifest in the chain (previous=head, data_root=root,
// created_at=now), puts its block, and returns it along with its CID.
// It does not touch any remote head; see RemoteHead.CompareAndSwap for that.
func Append(ctx context.Context, client block.Client, head *dag.CID, root dag.CID, now time.Time) (dag.CID, *dag.Manifest, error) {
	m := dag.NewManifest(head, root, now)
	c, data, err := m.Encode()
	if err != nil {
		return dag.Undef, nil, fmt.Errorf("history: encode manifest: %w", err)
	}
	if _, err := client.Put(ctx, dag.DagCBORCodec, data); err != nil {
		return dag.Undef, nil, err
	}
	return c, m, nil
}

// Fetch loads a single manifest by CID.
func Fetch(ctx context.Context, client block.Client, c dag.CID) (*dag.Manifest, error) {
	data, err := client.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	m, err := dag.DecodeManifest(data)
	if err != nil {
		return nil, &leakyerr.Decode{What: fmt.Sprintf("manifest %s", c), Err: err}
	}
	return m, nil
}

// Walk follows `previous` links starting at head, yielding manifests newest
// first, until it reaches a genesis manifest (previous == nil) or limit
// manifests have been returned (limit <= 0 means unbounded).
func Walk(ctx context.Context, client block.Client, head dag.CID, limit int) ([]*dag.Manifest, error) {
	var out []*dag.Manifest
	cur := head
	for {
		if limit > 0 && len(out) >= limit {
			break
		}
		m, err := Fetch(ctx, client, cur)
		if err != nil {
			return out, err
		}
		out = append(out, m)
		if m.Previous == nil {
			break
		}
		cur = *m.Previous
	}
	return out, nil
}
