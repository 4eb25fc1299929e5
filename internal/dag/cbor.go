package dag

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the single library-level encoder every entity in this package
// routes through. Sorted map keys and no default-elision guarantee that two
// semantically identical values produce byte-identical encodings.
var encMode = sync.OnceValue(func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Sort = cbor.SortCanonical
	opts.OmitEmpty = cbor.OmitEmptyCBORValue
	opts.Time = cbor.TimeRFC3339Nano
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("dag: build canonical cbor encoder: %v", err))
	}
	return mode
})

// MarshalCanonical encodes v to canonical CBOR.
func MarshalCanonical(v interface{}) ([]byte, error) {
	data, err := encMode().Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return data, nil
}

// UnmarshalCanonical decodes CBOR bytes into v.
func UnmarshalCanonical(data []byte, v interface{}) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}

// cidForBlock computes the CID a canonical-CBOR-encoded value would get.
func cidForBlock(codec uint64, v interface{}) (CID, []byte, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return Undef, nil, err
	}
	c, err := ComputeCID(codec, data)
	if err != nil {
		return Undef, nil, err
	}
	return c, data, nil
}
