// Package block provides the get/put/pin abstraction over a remote,
// IPFS-compatible block store. The core depends only on this interface; the
// concrete daemon is swappable.
package block

import (
	"context"

	"github.com/ipfs/go-cid"
)

// Client is a mapping CID -> bytes plus a pin notion. Implementations must
// be safe for concurrent use: commit fans independent Puts out in parallel.
type Client interface {
	// Put stores a block and returns the canonical CID derived from data
	// under the given multicodec (dag.RawCodec for file content,
	// dag.DagCBORCodec for Node/Object/Schema/Manifest blocks). Idempotent.
	Put(ctx context.Context, codec uint64, data []byte) (cid.Cid, error)
	// Get returns the block or fails with *leakyerr.NotFound / *leakyerr.Transport.
	Get(ctx context.Context, c cid.Cid) ([]byte, error)
	// Has reports whether a CID is present without fetching its bytes.
	Has(ctx context.Context, c cid.Cid) (bool, error)
	// Pin marks a CID (and, if recursive, everything it links to) as retained.
	Pin(ctx context.Context, c cid.Cid, recursive bool) error
	// Unpin releases a previously pinned CID.
	Unpin(ctx context.Context, c cid.Cid) error
}
