package dag

import (
	"fmt"
	"time"
)

// Object is the metadata record a file link points at. DataCID is the
// content block the file's bytes live in; Metadata values are decoded CBOR
// (maps, strings, numbers, bools, nils) and validated against the nearest
// enclosing schema on every mutating operation.
type Object struct {
	DataCID   CID                    `cbor:"cid"`
	Metadata  map[string]interface{} `cbor:"metadata"`
	CreatedAt time.Time              `cbor:"created_at"`
	UpdatedAt time.Time              `cbor:"updated_at"`
}

// NewObject returns an Object stamped with now for both timestamps.
func NewObject(dataCID CID, metadata map[string]interface{}, now time.Time) *Object {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &Object{DataCID: dataCID, Metadata: metadata, CreatedAt: now, UpdatedAt: now}
}

// Touch returns a copy of o with Metadata replaced and UpdatedAt bumped to
// now; DataCID and CreatedAt are preserved.
func (o *Object) Touch(metadata map[string]interface{}, now time.Time) *Object {
	return &Object{DataCID: o.DataCID, Metadata: metadata, CreatedAt: o.CreatedAt, UpdatedAt: now}
}

// Encode produces the canonical CBOR bytes and the CID they hash to.
//
// Timestamps are carried as RFC3339 strings rather than a numeric epoch, to
// keep the wire format free of floating point and avoid coupling the block
// format to a particular language's epoch representation.
func (o *Object) Encode() (CID, []byte, error) {
	return cidForBlock(DagCBORCodec, o)
}

// DecodeObject parses canonical CBOR bytes into an Object.
func DecodeObject(data []byte) (*Object, error) {
	var o Object
	if err := UnmarshalCanonical(data, &o); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if o.Metadata == nil {
		o.Metadata = map[string]interface{}{}
	}
	return &o, nil
}
