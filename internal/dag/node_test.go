package dag

import (
	"testing"
)

func mustRawCID(t *testing.T, data string) CID {
	t.Helper()
	c, err := ComputeRawCID([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNode_EncodeIsDeterministic(t *testing.T) {
	fileCID := mustRawCID(t, "hello")

	n1 := NewNode()
	n1.PutLink("b.txt", Link{Kind: LinkFile, CID: fileCID})
	n1.PutLink("a.txt", Link{Kind: LinkFile, CID: fileCID})

	n2 := NewNode()
	n2.PutLink("a.txt", Link{Kind: LinkFile, CID: fileCID})
	n2.PutLink("b.txt", Link{Kind: LinkFile, CID: fileCID})

	c1, data1, err := n1.Encode()
	if err != nil {
		t.Fatal(err)
	}
	c2, data2, err := n2.Encode()
	if err != nil {
		t.Fatal(err)
	}

	if c1 != c2 {
		t.Errorf("insertion order changed the CID: %s != %s", c1, c2)
	}
	if string(data1) != string(data2) {
		t.Errorf("insertion order changed the bytes")
	}
}

func TestNode_EncodeDecodeRoundTrip(t *testing.T) {
	fileCID := mustRawCID(t, "world")
	schemaCID := mustRawCID(t, "schema")

	n := NewNode()
	n.PutLink("file.txt", Link{Kind: LinkFile, CID: fileCID})
	n.SetSchema(&schemaCID)

	_, data, err := n.Encode()
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeNode(data)
	if err != nil {
		t.Fatal(err)
	}

	link, ok := got.GetLink("file.txt")
	if !ok {
		t.Fatal("expected file.txt link")
	}
	if link.CID != fileCID {
		t.Errorf("got cid %s, want %s", link.CID, fileCID)
	}
	if got.Schema() == nil || *got.Schema() != schemaCID {
		t.Errorf("schema link did not round-trip")
	}
}

func TestNode_EmptySchemaOmittedFromEncoding(t *testing.T) {
	n := NewNode()
	_, data, err := n.Encode()
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]interface{}
	if err := UnmarshalCanonical(data, &fields); err != nil {
		t.Fatal(err)
	}
	if _, ok := fields["schema"]; ok {
		t.Errorf("expected no schema key in the encoding, got %v", fields["schema"])
	}

	got, err := DecodeNode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Schema() != nil {
		t.Errorf("expected nil schema, got %v", got.Schema())
	}
	if got.Len() != 0 {
		t.Errorf("expected empty node, got %d links", got.Len())
	}
}

func TestNode_CIDChangesWithContent(t *testing.T) {
	n1 := NewNode()
	n2 := NewNode()
	n2.PutLink("x", Link{Kind: LinkFile, CID: mustRawCID(t, "x")})

	c1, _, err := n1.Encode()
	if err != nil {
		t.Fatal(err)
	}
	c2, _, err := n2.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if c1 == c2 {
		t.Error("different nodes produced the same CID")
	}
}
