package block

import (
	"context"
	"testing"

	"github.com/systemshift/leaky/internal/dag"
	"github.com/systemshift/leaky/internal/leakyerr"
)

func TestMemClient_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()

	data := []byte("hello world")
	got, err := c.Put(ctx, dag.RawCodec, data)
	if err != nil {
		t.Fatal(err)
	}

	back, err := c.Get(ctx, got)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != string(data) {
		t.Errorf("got %q, want %q", back, data)
	}
}

func TestMemClient_GetMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()

	missing, err := dag.ComputeRawCID([]byte("never stored"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Get(ctx, missing)
	var nf *leakyerr.NotFound
	if !asNotFound(err, &nf) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func asNotFound(err error, target **leakyerr.NotFound) bool {
	nf, ok := err.(*leakyerr.NotFound)
	if !ok {
		return false
	}
	*target = nf
	return true
}

func TestMemClient_PutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()

	data := []byte("idempotent")
	c1, err := c.Put(ctx, dag.RawCodec, data)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := c.Put(ctx, dag.RawCodec, data)
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Errorf("expected identical CIDs, got %s and %s", c1, c2)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 stored block, got %d", c.Len())
	}
}

func TestMemClient_PinUnpin(t *testing.T) {
	ctx := context.Background()
	c := NewMemClient()

	cid, err := c.Put(ctx, dag.RawCodec, []byte("pin me"))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Pin(ctx, cid, true); err != nil {
		t.Fatal(err)
	}
	if !c.Pinned(cid) {
		t.Error("expected pinned")
	}
	if err := c.Unpin(ctx, cid); err != nil {
		t.Fatal(err)
	}
	if c.Pinned(cid) {
		t.Error("expected unpinned")
	}
}
