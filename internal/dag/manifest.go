package dag

import (
	"fmt"
	"time"
)

// Manifest is one link in the linear history chain: the data_root it
// captured, a pointer to the manifest before it (nil for the first), and
// the time it was appended. History never branches or merges; advancing the
// chain is always a compare-and-swap against the previous head CID.
type Manifest struct {
	Previous  *CID      `cbor:"previous,omitempty"`
	DataRoot  CID       `cbor:"data_root"`
	CreatedAt time.Time `cbor:"created_at"`
}

// NewManifest builds the next manifest in a chain. previous is nil for the
// very first manifest.
func NewManifest(previous *CID, dataRoot CID, now time.Time) *Manifest {
	return &Manifest{Previous: previous, DataRoot: dataRoot, CreatedAt: now}
}

// Encode produces the canonical CBOR bytes and the CID they hash to.
func (m *Manifest) Encode() (CID, []byte, error) {
	return cidForBlock(DagCBORCodec, m)
}

// DecodeManifest parses canonical CBOR bytes into a Manifest.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := UnmarshalCanonical(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
