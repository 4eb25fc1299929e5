// Package dag implements the node model: CIDs, canonical CBOR encoding,
// Nodes, Objects, Schemas and Manifests. Everything here is pure — no
// network I/O — so it can be tested without a block client.
package dag

import (
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// CID is the content identifier used throughout leaky: a CIDv1 over SHA2-256.
type CID = gocid.Cid

// Undef is the zero/undefined CID, used to represent "no parent" / "empty".
var Undef = gocid.Undef

// RawCodec is the multicodec for opaque data blocks.
const RawCodec = gocid.Raw

// DagCBORCodec is the multicodec for Node/Object/Schema/Manifest blocks.
const DagCBORCodec = gocid.DagCBOR

// ComputeCID derives the CIDv1 for data under the given multicodec.
func ComputeCID(codec uint64, data []byte) (CID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return Undef, fmt.Errorf("multihash: %w", err)
	}
	return gocid.NewCidV1(codec, mh), nil
}

// ComputeRawCID derives the CIDv1 of a raw data block.
func ComputeRawCID(data []byte) (CID, error) {
	return ComputeCID(RawCodec, data)
}

// EncodeCID renders a CID as base32-lower multibase text, the form used in
// ref files, sync-state, and log lines.
func EncodeCID(c CID) string {
	encoded, _ := multibase.Encode(multibase.Base32, c.Bytes())
	return encoded
}

// DecodeCID parses the base32-lower multibase text form back into a CID.
func DecodeCID(s string) (CID, error) {
	_, data, err := multibase.Decode(s)
	if err != nil {
		return Undef, fmt.Errorf("decode cid: %w", err)
	}
	return gocid.Cast(data)
}
