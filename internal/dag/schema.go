package dag

import (
	"encoding/json"
	"fmt"
)

// Schema wraps a JSON-Schema-subset document. It is stored as raw JSON bytes
// rather than a CBOR-native structure because schemas are authored by hand
// and the subset's semantics (type/required/properties/additionalProperties/
// enum) map directly onto json.RawMessage's byte-for-byte JSON text.
type Schema struct {
	Raw json.RawMessage `cbor:"raw"`
}

// NewSchema validates that raw is well-formed JSON and wraps it.
func NewSchema(raw []byte) (*Schema, error) {
	if !json.Valid(raw) {
		return nil, fmt.Errorf("schema: not valid json")
	}
	compact := make(json.RawMessage, len(raw))
	copy(compact, raw)
	return &Schema{Raw: compact}, nil
}

// Encode produces the canonical CBOR bytes and the CID they hash to.
func (s *Schema) Encode() (CID, []byte, error) {
	return cidForBlock(DagCBORCodec, s)
}

// DecodeSchema parses canonical CBOR bytes into a Schema.
func DecodeSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := UnmarshalCanonical(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return &s, nil
}
